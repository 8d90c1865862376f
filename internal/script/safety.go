package script

import (
	"fmt"
	"strings"
	"unicode/utf8"

	whErrors "github.com/CoderDKai/workhorse/internal/errors"
)

// defaultDenyList holds command fragments that are never run. Matching is
// a case-insensitive substring test, so it errs on the side of rejecting.
//
//nolint:gochecknoglobals // Fixed list
var defaultDenyList = []string{
	"rm -rf",
	"sudo rm",
	"format",
	"del /f",
	"shutdown",
	"reboot",
	"halt",
	"poweroff",
	"init 0",
	"init 6",
	"dd if=",
	"mkfs",
}

// DenyList returns the built-in blocked fragments followed by extra,
// lowercased and without blanks.
func DenyList(extra []string) []string {
	list := make([]string, 0, len(defaultDenyList)+len(extra))
	list = append(list, defaultDenyList...)
	for _, p := range extra {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			list = append(list, p)
		}
	}
	return list
}

// CheckContent validates a script body against the size cap and the deny
// list. maxLen counts characters, not bytes.
func CheckContent(content string, maxLen int, denyList []string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("script content: %w", whErrors.ErrEmptyValue)
	}
	if n := utf8.RuneCountInString(content); n > maxLen {
		return fmt.Errorf("%d characters, limit is %d: %w", n, maxLen, whErrors.ErrScriptTooLarge)
	}

	lower := strings.ToLower(content)
	for _, pattern := range denyList {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("matched '%s': %w", pattern, whErrors.ErrUnsafeScript)
		}
	}
	return nil
}
