package favorites

import (
	"fmt"
	"strconv"
	"strings"
)

// Catalog providers identify movies and tracks by numeric ids while the favorites
// store keys entries by movieId/trackId strings. The canonical key of an item is the
// base-10 form of the provider id; every boundary converts through these helpers.

// MovieKey returns the canonical key for a TMDB movie id.
func MovieKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// TrackKey returns the canonical key for a Deezer track id.
func TrackKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ParseKey converts a canonical key back into a provider id.
func ParseKey(key string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid item id %q", ErrValidation, key)
	}
	return id, nil
}

// NormalizeKey rewrites a key into its canonical form ("0027205" -> "27205").
// Keys that are not numeric are returned trimmed but otherwise untouched.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if id, err := ParseKey(key); err == nil {
		return strconv.FormatInt(id, 10)
	}
	return key
}
