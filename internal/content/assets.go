package content

import (
	"regexp"
	"strings"
)

// LegacyCDNPrefix is the CloudFront asset root that older content embeds in
// absolute URLs.
const LegacyCDNPrefix = "https://d1q048o59d0tgk.cloudfront.net/assets"

var absoluteURL = regexp.MustCompile(`(?i)^([a-z][a-z0-9+.-]*:)?//`)

// IsAbsoluteURL reports URLs with a scheme or protocol-relative prefix,
// plus data: and blob: URLs.
func IsAbsoluteURL(s string) bool {
	return absoluteURL.MatchString(s) || strings.HasPrefix(s, "data:") || strings.HasPrefix(s, "blob:")
}

// StripCDNPrefix removes the first occurrence of prefix (LegacyCDNPrefix
// when empty) so the site can resolve the path against its own base.
func StripCDNPrefix(url, prefix string) string {
	if prefix == "" {
		prefix = LegacyCDNPrefix
	}
	return strings.Replace(url, prefix, "", 1)
}

func stripPtr(url *string, prefix string) *string {
	if url == nil {
		return nil
	}
	s := StripCDNPrefix(*url, prefix)
	return &s
}

// ResolveAssetURL prefixes a relative path with base. Absolute URLs, paths
// already under base and an empty base leave url unchanged.
func ResolveAssetURL(base, url string) string {
	base = strings.TrimSuffix(base, "/")
	switch {
	case url == "", IsAbsoluteURL(url), base == "", strings.HasPrefix(url, base):
		return url
	case strings.HasPrefix(url, "/"):
		return base + url
	}
	return base + "/" + url
}

var (
	slashesBeforeAssets = regexp.MustCompile(`^/+assets/`)
	leadingAssets       = regexp.MustCompile(`^/?assets/`)
	nestedAssets        = regexp.MustCompile(`/assets/`)
	multiSlash          = regexp.MustCompile(`/{2,}`)
)

// NormalizeAssetPath cleans a stored path: backslashes become slashes, any
// "assets/" segment is dropped and repeated slashes collapse.
func NormalizeAssetPath(p string) string {
	if p == "" {
		return p
	}
	cleaned := strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	if IsAbsoluteURL(cleaned) {
		return cleaned
	}
	cleaned = slashesBeforeAssets.ReplaceAllString(cleaned, "/assets/")
	cleaned = leadingAssets.ReplaceAllString(cleaned, "/")
	cleaned = nestedAssets.ReplaceAllString(cleaned, "/")
	return multiSlash.ReplaceAllString(cleaned, "/")
}

// AssetURL normalizes p and resolves it against base.
func AssetURL(base, p string) string {
	if p == "" || IsAbsoluteURL(p) {
		return p
	}
	base = strings.TrimSuffix(base, "/")
	n := NormalizeAssetPath(p)
	if strings.HasPrefix(n, "/") {
		return base + n
	}
	return base + "/" + n
}
