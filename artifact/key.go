// Package artifact maps source object identifiers to rendition
// identifiers and back. The mapping is the only record of which
// renditions may exist: there is no durable job table, lookup is
// existence-based, so Encode/Decode must stay deterministic across
// process lifetimes.
package artifact

import (
	"path"
	"strings"
)

// marker separates the base name from the quality suffix. It is
// reserved: source keys containing it are treated as renditions and
// normalized before deriving.
const marker = "__q"

// Key is a structured rendition identifier. Quality is empty for the
// original source object.
type Key struct {
	Base    string
	Quality string
}

// Encode serializes the key into an object identifier. The quality
// suffix is inserted before the extension so renditions keep the
// container extension of their source:
//
//	{Base: "videos/vid1.mp4", Quality: "720p"} -> "videos/vid1__q720p.mp4"
func (k Key) Encode() string {
	if k.Quality == "" {
		return k.Base
	}
	ext := path.Ext(k.Base)
	stem := strings.TrimSuffix(k.Base, ext)
	return stem + marker + k.Quality + ext
}

// Decode parses an object identifier into a Key. Identifiers without a
// quality marker decode as the original source. Decode(k.Encode()) == k
// for every key Encode produces.
func Decode(id string) Key {
	ext := path.Ext(id)
	stem := strings.TrimSuffix(id, ext)

	i := strings.LastIndex(stem, marker)
	if i < 0 {
		return Key{Base: id}
	}
	q := stem[i+len(marker):]
	if q == "" || strings.ContainsAny(q, "/") {
		// A path separator after the marker means the marker was part
		// of a directory name, not a quality suffix.
		return Key{Base: id}
	}
	return Key{Base: stem[:i] + ext, Quality: q}
}

// Derive returns the rendition identifier for (source, quality). The
// source is normalized first so deriving from an identifier that is
// itself a rendition never nests quality suffixes.
func Derive(sourceID, quality string) string {
	return Key{Base: Base(sourceID), Quality: quality}.Encode()
}

// Base recovers the original source identifier from any identifier,
// rendition or not.
func Base(id string) string {
	k := Decode(id)
	for k.Quality != "" {
		k = Decode(k.Base)
	}
	return k.Base
}
