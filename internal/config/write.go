package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joeycumines/gridedit/internal/storage"
)

// SetKeyInFile sets a global option in the config file at path, keeping
// comments and layout.
func SetKeyInFile(path, key, value string) error {
	return SetSectionKeyInFile(path, "", key, value)
}

// SetSectionKeyInFile sets key in section ("" for global) of the config file
// at path. The file and the section are created when missing.
func SetSectionKeyInFile(path, section, key, value string) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading config file: %w", err)
	}

	var lines []string
	if len(data) > 0 {
		lines = strings.Split(string(data), "\n")
	}
	entry := key
	if value != "" {
		entry += " " + value
	}
	lines = setLine(lines, section, key, entry)

	if err := storage.AtomicWriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// setLine replaces the line for key inside section, or inserts entry at the
// end of the section's block. The global block ends at the first header.
func setLine(lines []string, section, key, entry string) []string {
	current := ""
	start, end := -1, len(lines)
	if section == "" {
		start = 0
	}
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if h, ok := sectionHeader(trimmed); ok {
			if current == section && start >= 0 {
				end = i
				break
			}
			current = h
			if h == section {
				start = i + 1
			}
			continue
		}
		if current != section || trimmed == "" || trimmed[0] == '#' {
			continue
		}
		if name, _, _ := strings.Cut(trimmed, " "); name == key {
			lines[i] = entry
			return lines
		}
	}

	if start < 0 {
		if n := len(lines); n > 0 && lines[n-1] == "" {
			return append(lines[:n-1], "["+section+"]", entry, "")
		}
		return append(lines, "["+section+"]", entry)
	}
	if end == len(lines) && end > 0 && lines[end-1] == "" {
		end--
	}
	return append(lines[:end], append([]string{entry}, lines[end:]...)...)
}

func sectionHeader(trimmed string) (string, bool) {
	name, ok := strings.CutPrefix(trimmed, "[")
	if !ok {
		return "", false
	}
	name, ok = strings.CutSuffix(name, "]")
	return strings.TrimSpace(name), ok
}
