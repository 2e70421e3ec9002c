package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const slugMaxLength = 48

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// writeMemory stores content as a timestamped document under the data
// directory's documents folder and returns its path.
func writeMemory(dataDir, content string) (string, error) {
	docsDir := filepath.Join(dataDir, "documents")
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		return "", err
	}

	// Derive a readable slug from the first content line after any headers.
	name := slugify(firstLine(content))
	path := filepath.Join(docsDir,
		fmt.Sprintf("%s_%s.txt", time.Now().Format("20060102150405"), name))

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func slugify(text string) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(text), "-"), "-")
	if slug == "" {
		slug = "entry"
	}
	if len(slug) > slugMaxLength {
		slug = strings.TrimRight(slug[:slugMaxLength], "-")
	}
	return slug
}
