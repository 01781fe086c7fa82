package uricomposer

import (
	"strings"
)

// placeholder is the base-URL marker stored in catalog picture
// references. It is replaced with the deployment's public base URL.
const placeholder = "http://catalogbaseurltobereplaced"

// Composer rewrites stored picture references into public URLs.
type Composer struct {
	baseURL string
}

// New creates a Composer for the given public base URL.
func New(baseURL string) *Composer {
	return &Composer{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// ComposePicURI replaces the stored placeholder with the configured base
// URL. References without the placeholder pass through unchanged.
func (c *Composer) ComposePicURI(raw string) string {
	return strings.Replace(raw, placeholder, c.baseURL, 1)
}
