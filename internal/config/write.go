package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joeycumines/termcalc/internal/storage"
)

// SetKeyInFile updates or adds a global option key in the config file,
// preserving comments and formatting. An existing global line for key is
// replaced in place; otherwise the key is inserted before the first section
// header, or appended when there are no sections. Keys inside [section]
// blocks are never matched.
func SetKeyInFile(path, key, value string) error {
	if strings.ContainsAny(key, " \t\n") || key == "" {
		return fmt.Errorf("invalid key %q", key)
	}
	if strings.Contains(value, "\n") {
		return fmt.Errorf("value for %q must be a single line", key)
	}

	if fi, err := os.Lstat(path); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("symlink not allowed in config path: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config file: %w", err)
	}

	var lines []string
	if len(data) > 0 {
		lines = strings.Split(string(data), "\n")
	}

	newLine := key
	if value != "" {
		newLine = key + " " + value
	}

	if i, found, insertAt := findGlobalKey(lines, key); found {
		lines[i] = newLine
	} else if insertAt < len(lines) {
		lines = append(lines[:insertAt+1], lines[insertAt:]...)
		lines[insertAt] = newLine
	} else if len(lines) > 0 && lines[len(lines)-1] == "" {
		// keep the trailing newline last
		lines = append(lines[:len(lines)-1], newLine, "")
	} else {
		lines = append(lines, newLine, "")
	}

	return storage.AtomicWriteFile(path, []byte(strings.Join(lines, "\n")), 0644)
}

// findGlobalKey returns the index of key's line in the global section, and
// the index of the first section header (len(lines) if there is none).
func findGlobalKey(lines []string, key string) (index int, found bool, firstSection int) {
	firstSection = len(lines)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			firstSection = i
			return 0, false, firstSection
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if name, _, _ := strings.Cut(trimmed, " "); name == key {
			return i, true, firstSection
		}
	}
	return 0, false, firstSection
}
