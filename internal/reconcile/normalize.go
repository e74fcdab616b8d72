package reconcile

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// sizeCodePattern matches a trailing parenthetical size code such as "Small (S)" or "Extra Large (XL)".
var sizeCodePattern = regexp.MustCompile(`^(.*?)\s*\(\s*[[:alnum:]]{1,4}\s*\)\s*$`)

var folder = cases.Fold()

// NormalizeName canonicalises an item name for comparison.
func NormalizeName(s string) string {
	return fold(strings.Join(strings.Fields(s), " "))
}

// NormalizeSize canonicalises a size label for comparison, dropping a trailing
// parenthetical code so that "Small (S)" and "small" compare equal.
func NormalizeSize(s string) string {
	return fold(strings.Join(strings.Fields(SizeLabel(s)), " "))
}

// SizeLabel strips a trailing parenthetical size code but keeps the original casing.
func SizeLabel(s string) string {
	trimmed := strings.TrimSpace(s)
	if m := sizeCodePattern.FindStringSubmatch(trimmed); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

func fold(s string) string {
	if s == "" {
		return ""
	}
	return folder.String(s)
}
