package helpers

import (
	"net/url"
	"strings"
)

const dataURLPrefix = "data:"

// IsDataURL reports whether ref is an inline data URL.
func IsDataURL(ref string) bool {
	return len(ref) >= len(dataURLPrefix) && strings.EqualFold(ref[:len(dataURLPrefix)], dataURLPrefix)
}

// IsAbsoluteURL reports whether ref already carries a scheme such as https://.
func IsAbsoluteURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

// ResolveImageURL turns a stored blog image reference into something a
// browser can fetch. Data URLs and absolute URLs pass through; anything else
// is treated as a path under publicBase.
func ResolveImageURL(publicBase, ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return ""
	case IsDataURL(ref), IsAbsoluteURL(ref):
		return ref
	}
	base := strings.TrimRight(publicBase, "/")
	return base + "/" + strings.TrimLeft(ref, "/")
}
