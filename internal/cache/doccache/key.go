package doccache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// MaxKeyLength bounds the length of a derived cache file name
const MaxKeyLength = 100

const keyExt = ".json"

// Params are the query parameters of an upstream request
type Params map[string]string

// Key identifies a cached document. It is a file name, safe to use on any filesystem.
type Key string

// KeyFor derives the cache key of an endpoint and its parameters.
// Parameters are sorted by name so insertion order does not matter. When the
// readable form could be shared by another request, a short hash of the raw
// request is appended.
func KeyFor(endpoint string, params Params) Key {
	cleanEndpoint, lossy := sanitize(endpoint, "/")
	// A '-' or '_' in the endpoint could be read as the start of a parameter
	lossy = lossy || strings.ContainsAny(endpoint, "-_")

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	paramStr := ""
	raw := endpoint
	if len(names) > 0 {
		parts := make([]string, 0, len(names))
		for _, name := range names {
			cleanName, nameLossy := sanitize(name, "")
			cleanValue, valueLossy := sanitize(params[name], "")
			// Names end at the first '-' and pairs are separated by '_'
			lossy = lossy || nameLossy || valueLossy ||
				strings.ContainsAny(name, "-_") || strings.Contains(params[name], "_")
			parts = append(parts, cleanName+"-"+cleanValue)
			raw += "\x00" + name + "\x00" + params[name]
		}
		paramStr = "_" + strings.Join(parts, "_")
	}

	hash := sha256.Sum256([]byte(raw))
	digest := hex.EncodeToString(hash[:])[:8]

	fullName := cleanEndpoint + paramStr
	if lossy {
		fullName += "_" + digest
	}
	if len(fullName)+len(keyExt) <= MaxKeyLength {
		return Key(fullName + keyExt)
	}

	// Collapse long names: keep a readable prefix of the endpoint
	prefixLen := MaxKeyLength - len(keyExt) - len(digest) - 1
	if len(cleanEndpoint) < prefixLen {
		prefixLen = len(cleanEndpoint)
	}
	return Key(cleanEndpoint[:prefixLen] + "_" + digest + keyExt)
}

// sanitize replaces every byte that is not safe in a file name with '_'.
// It reports whether a byte outside expected was replaced.
func sanitize(s, expected string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s))
	lossy := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '.', c == '_':
			b.WriteByte(c)
		default:
			if strings.IndexByte(expected, c) < 0 {
				lossy = true
			}
			b.WriteByte('_')
		}
	}
	return b.String(), lossy
}
