package models

// QualityProfile is a named transcoding target. The set of profiles is
// fixed at process start and never mutated.
type QualityProfile struct {
	Name        string // e.g. "720p"
	Width       int
	Height      int
	BitrateKbps int // target max bitrate
	CRF         int // constant-rate-factor quality
}
