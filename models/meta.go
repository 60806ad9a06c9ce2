package models

// FileMeta is the slice of file metadata the main application owns and
// the pipeline consumes. The source object itself lives in the object
// store under SourceKey; metadata is referenced, never duplicated.
type FileMeta struct {
	ID          string `json:"id"`
	SourceKey   string `json:"source_key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
