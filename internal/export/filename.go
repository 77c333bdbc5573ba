package export

import "strings"

var unsafeChars = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// SanitizeFilename makes a category label usable as part of a file name:
// surrounding whitespace is trimmed, newlines dropped, and spaces and the
// characters / \ : * ? " < > | replaced with underscores.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\n", "")
	name = strings.ReplaceAll(name, " ", "_")
	return unsafeChars.Replace(name)
}
