package models

// PlaybackClaims are the claims carried by a playback token. Subject is
// the file id the token grants access to.
type PlaybackClaims struct {
	Issuer    string `json:"iss,omitempty"`
	Subject   string `json:"sub"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
