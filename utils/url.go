package utils

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
)

// uiStateParams are query parameters that only carry tracking or UI state
// and never select a different listing.
var uiStateParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"fbclid":       {},
	"gclid":        {},
	"gclsrc":       {},
	"msclkid":      {},
	"px":           {},
	"ref":          {},
	"from":         {},
	"src":          {},
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

var errNotAbsolute = errors.New("normalize url: missing scheme or host")

// NormalizeURL resolves raw against base (when base is non-empty) and returns
// the canonical dedup form: lowercase scheme and host, no default port, no
// fragment, no tracking or UI-state parameters, sorted query. Applying it to
// its own output returns the same string.
func NormalizeURL(raw, base string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("normalize url: empty input")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("normalize url: %w", err)
	}
	if base != "" && !u.IsAbs() {
		b, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("normalize url: base: %w", err)
		}
		u = b.ResolveReference(u)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errNotAbsolute
	}

	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" && defaultPorts[u.Scheme] != port {
		host += ":" + port
	}
	u.Host = host
	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil
	u.RawQuery = cleanQuery(u.Query())
	if u.Path != "" && u.Path != "/" {
		u.Path = strings.TrimRight(path.Clean(u.Path), "/")
		u.RawPath = ""
	}
	return u.String(), nil
}

// Host returns the lowercase host (with any non-default port) of rawURL.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

func cleanQuery(values url.Values) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		if _, skip := uiStateParams[strings.ToLower(key)]; skip {
			continue
		}
		if strings.HasPrefix(strings.ToLower(key), "utm_") {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		for j, val := range values[key] {
			if j > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(val))
		}
	}
	return b.String()
}
