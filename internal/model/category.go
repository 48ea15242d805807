package model

import "strings"

// Category is a bitmask used as target filter for spatial queries.
type Category uint32

const (
	CategoryPlayer Category = 1 << iota
	CategoryEnemy
	CategoryProp
)

const (
	CategoryNone Category = 0
	CategoryAll  Category = ^Category(0)
)

// Has reports whether c intersects filter.
func (c Category) Has(filter Category) bool {
	return c&filter != 0
}

// String returns names joined with "|".
func (c Category) String() string {
	if c == CategoryNone {
		return "none"
	}
	if c == CategoryAll {
		return "all"
	}
	var parts []string
	if c&CategoryPlayer != 0 {
		parts = append(parts, "player")
	}
	if c&CategoryEnemy != 0 {
		parts = append(parts, "enemy")
	}
	if c&CategoryProp != 0 {
		parts = append(parts, "prop")
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, "|")
}

// ParseCategory parses a single category name. Unknown names yield CategoryNone.
func ParseCategory(name string) Category {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "player":
		return CategoryPlayer
	case "enemy":
		return CategoryEnemy
	case "prop":
		return CategoryProp
	case "all":
		return CategoryAll
	default:
		return CategoryNone
	}
}
