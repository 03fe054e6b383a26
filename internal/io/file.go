package ioutils

import (
	"net/url"
	"os"
	"path"
	"regexp"
	"strings"
)

// SanitizeFileName removes or replaces characters that are invalid in
// file/folder names.
//
// This keeps generated names valid across operating systems, particularly
// Windows which has the most restrictive naming rules.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("Lake: dawn/dusk")  // Returns "Lake_ dawn_dusk"
func SanitizeFileName(name string) string {
	invalidChars := regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	name = invalidChars.ReplaceAllString(name, "_")

	name = regexp.MustCompile(`\.+$`).ReplaceAllString(name, "")

	name = regexp.MustCompile(`\s+`).ReplaceAllString(name, " ")

	return strings.TrimRight(name, " ")
}

// EnsureDir creates a directory and all parent directories if they don't
// exist. Directories are created with mode 0755.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileNameFromURL extracts a local filename from an image URL. The Bing
// image endpoints put the real name in the id query parameter
// ("/th?id=OHR.Lake_UHD.jpg"), so that is preferred over the URL path.
// Returns an empty string when the URL carries no usable name, in which
// case the caller picks a fallback.
//
// Example:
//
//	FileNameFromURL("https://www.bing.com/th?id=OHR.Lake_UHD.jpg")
//	// Returns "OHR.Lake_UHD.jpg"
func FileNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if id := u.Query().Get("id"); id != "" {
		return SanitizeFileName(id)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" || !strings.Contains(name, ".") {
		return ""
	}
	return SanitizeFileName(name)
}
