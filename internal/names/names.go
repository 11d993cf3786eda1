// Package names derives safe file and object names for downloaded archives.
package names

import (
	"fmt"
	"strings"
)

// illegal characters replaced by Sanitize. Matches what the upstream sites
// allow in mod titles but filesystems do not.
const illegal = `/\:*?"<>|`

// Sanitize replaces characters that are unsafe in file or directory names
// with underscores.
func Sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegal, r) {
			return '_'
		}
		return r
	}, name)
}

// FileNameFromURL extracts the final path segment of a download URL with any
// query string stripped. It returns "" when the URL ends in a slash or has
// no path.
func FileNameFromURL(url string) string {
	name := url
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "?"); i >= 0 {
		name = name[:i]
	}
	return name
}

// FallbackName synthesizes a filename embedding both ids, used when a URL
// carries no usable final segment.
func FallbackName(modID, fileID int) string {
	return fmt.Sprintf("mod_%d_file_%d.zip", modID, fileID)
}

// DownloadKey returns the destination object key for one resolved transfer:
// a directory per mod id under the game domain, with the filename taken
// from the URL.
func DownloadKey(domain string, modID, fileID int, url string) string {
	name := FileNameFromURL(url)
	if name == "" {
		name = FallbackName(modID, fileID)
	}
	return fmt.Sprintf("%s/%d/%s", domain, modID, name)
}
