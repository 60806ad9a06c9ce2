package quality

import "vidserve/models"

// Catalog is the fixed set of renditions derived from every source.
// Ordered best-first; Fallback() is the mid-tier default served when a
// requested rendition is missing and the job is no longer running.
var Catalog = []models.QualityProfile{
	{Name: "720p", Width: 1280, Height: 720, BitrateKbps: 2500, CRF: 23},
	{Name: "480p", Width: 854, Height: 480, BitrateKbps: 1200, CRF: 26},
	{Name: "360p", Width: 640, Height: 360, BitrateKbps: 700, CRF: 28},
}

const fallbackName = "480p"

// Lookup returns the profile for a quality name.
func Lookup(name string) (models.QualityProfile, bool) {
	for _, p := range Catalog {
		if p.Name == name {
			return p, true
		}
	}
	return models.QualityProfile{}, false
}

// Fallback returns the default profile used by the delivery fallback
// cascade.
func Fallback() models.QualityProfile {
	p, _ := Lookup(fallbackName)
	return p
}

// Names returns the catalog quality names in catalog order.
func Names() []string {
	names := make([]string, 0, len(Catalog))
	for _, p := range Catalog {
		names = append(names, p.Name)
	}
	return names
}
