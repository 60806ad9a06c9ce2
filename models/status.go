package models

// JobStatus is the lifecycle state of a transcoding job for one source.
type JobStatus string

const (
	StatusNone        JobStatus = "none" // no job known for the source
	StatusPending     JobStatus = "pending"
	StatusCompressing JobStatus = "compressing"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
)

// Terminal reports whether the status will never change again.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
