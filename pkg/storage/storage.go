// Package storage holds the resume file backends.
package storage

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ResumePrefix is the directory (or key prefix) every stored resume lives under.
const ResumePrefix = "resumes"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFileName strips directories and anything outside a conservative
// character set from a client supplied file name.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "resume"
	}
	if len(name) > 100 {
		ext := filepath.Ext(name)
		if len(ext) > 10 {
			ext = ""
		}
		name = name[:100-len(ext)] + ext
	}
	return name
}

// objectName builds "resumes/<unix-nanos>-<name>".
func objectName(now time.Time, originalName string) string {
	return path.Join(ResumePrefix, fmt.Sprintf("%d-%s", now.UnixNano(), SanitizeFileName(originalName)))
}

// validRef rejects references that point outside the resume prefix.
func validRef(ref string) bool {
	clean := path.Clean(ref)
	return clean == ref && strings.HasPrefix(clean, ResumePrefix+"/") && !strings.Contains(clean, "..")
}
