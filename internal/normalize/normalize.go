// Package normalize canonicalizes place and province names for comparison.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// UnknownName is the sentinel for places with no usable name. Places carrying
// it are never deduplicated against each other.
const UnknownName = "ไม่ระบุ"

// namePrefixes and nameSuffixes list tokens stripped from the edges of a
// place name before comparison. Thai temple names frequently appear both with
// and without the "วัด" honorific.
var namePrefixes = []string{"วัด", "wat ", "temple ", "the "}

var nameSuffixes = []string{" temple", " center", " shopping center"}

// nameAliases maps well-known English place names to their canonical Thai
// form so that bilingual duplicates collapse.
var nameAliases = map[string]string{
	"grand palace":                   "พระบรมมหาราชวัง",
	"phra si rattana satsadaram":     "พระศรีรัตนศาสดาราม",
	"wat phra si rattana satsadaram": "พระศรีรัตนศาสดาราม",
	"emerald buddha temple":          "พระศรีรัตนศาสดาราม",
}

// provinceAliases maps nicknames and district shorthands to the official
// province name.
var provinceAliases = map[string]string{
	"โคราช":        "นครราชสีมา",
	"กทม":          "กรุงเทพมหานคร",
	"บางกอก":       "กรุงเทพมหานคร",
	"พัทยา":        "ชลบุรี",
	"อุบล":         "อุบลราชธานี",
	"ขอนแก่น":      "ขอนแก่น",
	"เชียงใหม่":    "เชียงใหม่",
	"ภูเก็ต":       "ภูเก็ต",
	"กระบี่":       "กระบี่",
	"สุราษฎร์ธานี": "สุราษฎร์ธานี",
}

// Name returns the comparison key for a place name: NFC-folded, trimmed,
// lowercased, with edge stopwords stripped and known aliases resolved.
// Empty input yields UnknownName. Idempotent.
func Name(name string) string {
	s := strings.ToLower(strings.TrimSpace(norm.NFC.String(name)))
	if s == "" {
		return UnknownName
	}

	for _, prefix := range namePrefixes {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
			break
		}
	}

	for _, suffix := range nameSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	if canonical, ok := nameAliases[s]; ok {
		s = canonical
	}

	// Drop a trailing Bangkok qualifier so "X กรุงเทพมหานคร" matches "X".
	if strings.Contains(s, "กรุงเทพ") {
		s = strings.ReplaceAll(s, " กรุงเทพมหานคร", "")
		s = strings.ReplaceAll(s, " กรุงเทพ", "")
	}

	if s == "" {
		return UnknownName
	}
	return s
}

// Province resolves a province nickname to the official name. Unrecognized
// input is returned trimmed, unchanged otherwise.
func Province(name string) string {
	trimmed := strings.TrimSpace(norm.NFC.String(name))
	if full, ok := provinceAliases[strings.ToLower(trimmed)]; ok {
		return full
	}
	return trimmed
}
