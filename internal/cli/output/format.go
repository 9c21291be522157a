package output

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// FormatHeader returns a markdown header.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns a markdown list item with a bold key.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s:** %s", key, value)
}

// Title turns a snake_case field name into a column title, e.g.
// "retention_days" becomes "Retention Days". Known acronyms stay upper case.
func Title(field string) string {
	words := strings.Fields(strings.ReplaceAll(field, "_", " "))
	for i, w := range words {
		switch strings.ToLower(w) {
		case "pii", "gdpr", "id", "csv":
			words[i] = strings.ToUpper(w)
		default:
			words[i] = titleCaser.String(w)
		}
	}
	return strings.Join(words, " ")
}

// YesNo renders a boolean for humans.
func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
