package catalog

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Locator is a resolvable reference to a single media resource.
//
// Supported forms:
//
//	asset:///audio/cielo.mp3      path relative to the asset root
//	file:///home/me/clip.flac     absolute path on disk
//	http://host/stream.mp3        remote resource
//	https://host/stream.mp3       remote resource
type Locator string

// Locator schemes.
const (
	SchemeAsset = "asset"
	SchemeFile  = "file"
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// String returns the locator text.
func (l Locator) String() string { return string(l) }

// Scheme returns the lowercased URI scheme, or "" if the locator has none.
func (l Locator) Scheme() string {
	u, err := url.Parse(string(l))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}

// IsRemote reports whether the locator must be fetched over the network.
func (l Locator) IsRemote() bool {
	s := l.Scheme()
	return s == SchemeHTTP || s == SchemeHTTPS
}

// Path returns the path component. For asset locators the leading slash is
// stripped so the result can be joined to an asset root.
func (l Locator) Path() string {
	u, err := url.Parse(string(l))
	if err != nil {
		return ""
	}
	if strings.EqualFold(u.Scheme, SchemeAsset) {
		return strings.TrimPrefix(u.Path, "/")
	}
	return u.Path
}

// Ext returns the lowercased file extension of the path, including the dot.
func (l Locator) Ext() string {
	return strings.ToLower(path.Ext(l.Path()))
}

// Validate checks that the locator uses a supported scheme and carries
// the parts that scheme needs.
func (l Locator) Validate() error {
	if strings.TrimSpace(string(l)) == "" {
		return fmt.Errorf("locator is empty")
	}
	u, err := url.Parse(string(l))
	if err != nil {
		return fmt.Errorf("locator %q: %w", l, err)
	}
	switch strings.ToLower(u.Scheme) {
	case SchemeAsset, SchemeFile:
		if strings.Trim(u.Path, "/") == "" {
			return fmt.Errorf("locator %q: missing path", l)
		}
	case SchemeHTTP, SchemeHTTPS:
		if u.Host == "" {
			return fmt.Errorf("locator %q: missing host", l)
		}
	case "":
		return fmt.Errorf("locator %q: missing scheme", l)
	default:
		return fmt.Errorf("locator %q: unsupported scheme %q", l, u.Scheme)
	}
	return nil
}
