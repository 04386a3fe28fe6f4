package u

import (
	"strings"
	"unicode"
)

// NormalizeName lower-cases s and converts spaces and underscores
// to hyphens, making "Halcyon Gate", "halcyon_gate" and "halcyon-gate"
// compare equal
func NormalizeName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	return s
}

// Slugify converts s to a file-name friendly identifier:
// lower-case letters, digits and single hyphens
func Slugify(s string) string {
	var sb strings.Builder
	prevHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}

// Capitalize does foo => Foo, BAR => Bar etc.
func Capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	s = strings.ToLower(s)
	return strings.ToUpper(s[0:1]) + s[1:]
}

// TitleFromName does "halcyon-gate" => "Halcyon Gate"
func TitleFromName(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	parts := strings.Fields(s)
	for i, p := range parts {
		parts[i] = Capitalize(p)
	}
	return strings.Join(parts, " ")
}

// TrimExt removes extension from s
func TrimExt(s string) string {
	idx := strings.LastIndex(s, ".")
	if idx == -1 {
		return s
	}
	return s[:idx]
}
