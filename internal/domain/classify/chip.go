package classify

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// IconDir is where chip icons live on the host site.
const IconDir = "img/training/chip/"

var (
	markup     = regexp.MustCompile(`<[^>]*>`)
	chipNumber = regexp.MustCompile(` No\. \d+`)
	spaces     = regexp.MustCompile(`\s+`)
)

// knownChips have fixed icon stems; first match wins.
var knownChips = []struct { //nolint:gochecknoglobals // fixed lookup table
	name string
	stem string
}{
	{"availability chip", "availability"},
	{"time saver chip", "time_saver"},
	{"efficiency chip", "efficiency"},
	{"freebie chip", "freebie"},
}

// SanitizeChipName strips markup, entities, quotes and a "No. N" suffix.
func SanitizeChipName(name string) string {
	s := markup.ReplaceAllString(name, "")
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, `"`, "")
	if loc := chipNumber.FindStringIndex(s); loc != nil {
		s = s[:loc[0]] + s[loc[1]:]
	}
	return strings.TrimSpace(s)
}

// ChipIcon describes how a chip is displayed.
type ChipIcon struct {
	Title string `json:"title"`
	File  string `json:"file"`
}

// Path is the icon location relative to the host root.
func (c ChipIcon) Path() string { return IconDir + c.File }

// IconFor maps a sanitized chip name to its title and icon file.
func IconFor(name string) ChipIcon {
	lower := strings.ToLower(name)
	for _, k := range knownChips {
		if strings.Contains(lower, k.name) {
			return ChipIcon{Title: capitalize(k.name), File: k.stem + ".png"}
		}
	}
	stem := strings.TrimSuffix(lower, " chip")
	stem = strings.TrimSuffix(stem, " package")
	stem = spaces.ReplaceAllString(stem, "_")
	return ChipIcon{Title: capitalize(name), File: stem + ".png"}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
