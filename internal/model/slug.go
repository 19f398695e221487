package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lowerCaser = cases.Lower(language.Und)

// Slug normalizes a country name for file and directory naming:
// case-folded, trimmed, spaces replaced with underscores.
func Slug(country string) string {
	s := lowerCaser.String(strings.TrimSpace(country))
	return strings.ReplaceAll(s, " ", "_")
}

// IndexKey normalizes a country name for index map keys. Display casing is
// preserved elsewhere; lookups always go through this fold.
func IndexKey(country string) string {
	return lowerCaser.String(strings.TrimSpace(country))
}
