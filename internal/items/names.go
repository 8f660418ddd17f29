package items

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DisplayName derives a human-readable label from an item name. Beatmap
// archives are conventionally named "<set id> <artist> - <title>.osz"; the
// numeric set ID and extension are dropped.
func DisplayName(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	base = norm.NFC.String(base)

	trimmed := strings.TrimLeftFunc(base, unicode.IsDigit)
	if trimmed != base && trimmed != "" && unicode.IsSpace(rune(trimmed[0])) {
		base = trimmed
	}
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return name
	}
	return base
}
