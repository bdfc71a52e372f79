// Package caption normalises thumbnail caption text.
package caption

import "strings"

// escapedNewline is the two-character sequence users type for a line break.
const escapedNewline = `\n`

var replacer = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	escapedNewline, "\n",
)

// Normalize converts literal `\n` sequences and CR/CRLF line endings into
// real line breaks. It is idempotent: no replacement can produce a new
// `\n` sequence.
func Normalize(s string) string {
	return replacer.Replace(s)
}

// Lines returns the normalised caption split into lines.
func Lines(s string) []string {
	return strings.Split(Normalize(s), "\n")
}
