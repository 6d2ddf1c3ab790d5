package setting

import (
	"regexp"
	"strings"
)

// EnvVar is one environment-variable projection of a setting: the variable
// name plus whether the variable carries the negated form of a boolean.
type EnvVar struct {
	Key     string
	Negated bool
}

var envKeyScrub = regexp.MustCompile(`[^A-Z0-9_]`)

// EnvKey derives the environment variable name for a prefix/name pair:
// upper-cased, dots doubled into "__", and any remaining non-alphanumeric
// runes collapsed to "_".
func EnvKey(prefix, name string) string {
	key := strings.ToUpper(prefix + "_" + name)
	key = strings.ReplaceAll(key, ".", "__")
	return envKeyScrub.ReplaceAllString(key, "_")
}

// EnvVars projects the definition onto environment variable names, one per
// (prefix, name-or-alias) pair, preserving prefix order. The first entry is
// always the canonical variable for the first prefix. Aliases declared with
// a leading "!" produce Negated entries.
func (d *Definition) EnvVars(prefixes []string) []EnvVar {
	var vars []EnvVar
	seen := make(map[string]struct{})

	for _, prefix := range prefixes {
		for _, name := range append([]string{d.Name}, d.Aliases...) {
			negated := strings.HasPrefix(name, "!")
			key := EnvKey(prefix, strings.TrimPrefix(name, "!"))
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			vars = append(vars, EnvVar{Key: key, Negated: negated})
		}
	}

	return vars
}
