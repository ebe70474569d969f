package utils

import (
	"regexp"
	"strings"
)

var unsafeNameChars = regexp.MustCompile(`[^0-9A-Za-z_]`)
var allDigits = regexp.MustCompile(`^\d+$`)

// SafeID normalizes a name into a valid identifier: spaces and special
// characters become underscores, and purely numeric names get a leading
// underscore.
func SafeID(name string) string {
	if name == "" {
		return "unnamed"
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeNameChars.ReplaceAllString(s, "_")
	if allDigits.MatchString(s) {
		s = "_" + s
	}
	return s
}

// NormalizeType maps a Tableau column datatype onto a model-spec type tag.
func NormalizeType(t string) string {
	if t == "" {
		return "String"
	}
	lower := strings.ToLower(t)
	switch lower {
	case "int", "integer", "long", "int64":
		return "Int64"
	case "float", "double", "decimal", "real", "number":
		return "Double"
	}
	if strings.Contains(lower, "date") {
		return "DateTime"
	}
	if strings.Contains(lower, "bool") {
		return "Boolean"
	}
	return "String"
}

func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
