package utils

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// SanitizeInput HTML-entity-escapes a user-supplied string so it can be
// interpolated into an email body without carrying executable markup.
func SanitizeInput(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(htmlEscaper.Replace(input))
}

// SanitizeMessage escapes first, then converts newlines to <br> so the line
// breaks themselves survive while everything user-supplied stays inert.
func SanitizeMessage(input string) string {
	escaped := SanitizeInput(input)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return strings.ReplaceAll(escaped, "\n", "<br>")
}
