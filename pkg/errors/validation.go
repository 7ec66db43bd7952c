package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// columnNameRegex matches CSV column names usable as hierarchy keys.
var columnNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateColumnName validates a hierarchy column name.
func ValidateColumnName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidHierarchy, "column name cannot be empty")
	}
	if !columnNameRegex.MatchString(name) {
		return New(ErrCodeInvalidHierarchy, "invalid column name: %q", name)
	}
	return nil
}

// ValidateHierarchy checks that a hierarchy is non-empty and has no
// duplicate or malformed keys.
func ValidateHierarchy(levels []string) error {
	if len(levels) == 0 {
		return New(ErrCodeInvalidHierarchy, "hierarchy must have at least one level")
	}
	seen := make(map[string]bool, len(levels))
	for _, l := range levels {
		if err := ValidateColumnName(l); err != nil {
			return err
		}
		if seen[l] {
			return New(ErrCodeInvalidHierarchy, "duplicate hierarchy level %q", l)
		}
		seen[l] = true
	}
	return nil
}

// SafeFilename turns a dataset or condition label into a filename segment.
// Path separators, control characters and spaces become underscores.
// It returns an error for labels that are empty after cleaning or that
// would escape the output directory.
func SafeFilename(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", New(ErrCodeInvalidName, "name cannot be empty")
	}
	if strings.Contains(label, "..") {
		return "", New(ErrCodeInvalidName, "name cannot contain path traversal sequences (..): %q", label)
	}

	const maxLength = 128
	var b strings.Builder
	for _, r := range label {
		switch {
		case r == '/' || r == '\\' || unicode.IsSpace(r) || unicode.IsControl(r):
			b.WriteByte('_')
		case r == ',' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > maxLength {
		out = out[:maxLength]
	}
	return out, nil
}
