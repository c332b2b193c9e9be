package vuet

import "strings"

// JoinPath joins module names into a store path. An empty separator falls
// back to DefaultPathJoin.
func JoinPath(separator string, segments ...string) string {
	if separator == "" {
		separator = DefaultPathJoin
	}
	return strings.Join(segments, separator)
}

// SplitPath is the inverse of JoinPath for paths built from valid names.
func SplitPath(separator, path string) []string {
	if path == "" {
		return nil
	}
	if separator == "" {
		separator = DefaultPathJoin
	}
	return strings.Split(path, separator)
}

func validateSegment(separator, name string) error {
	if name == "" {
		return ErrInvalidModuleName
	}
	if strings.Contains(name, separator) {
		return ErrSeparatorCollision
	}
	return nil
}
