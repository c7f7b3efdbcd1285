package textutil

import "strings"

// pathSegmentReplacer drops characters that would turn a folder name into a
// nested or invalid path.
var pathSegmentReplacer = strings.NewReplacer(
	"/", "",
	"\\", "",
	":", "",
	"*", "",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizePathSegment reduces name to a single safe directory component.
// Returns "" when nothing usable remains.
func SanitizePathSegment(name string) string {
	name = strings.TrimSpace(pathSegmentReplacer.Replace(name))
	if name == "." || name == ".." {
		return ""
	}
	return name
}
