package setting

import (
	"errors"
	"fmt"
)

// ErrSettingMissing is returned when no definition matches a requested name
// or alias. It is recoverable: callers may proceed with an undeclared,
// untyped setting instead of treating the miss as fatal.
var ErrSettingMissing = errors.New("setting is not known")

// MissingError wraps ErrSettingMissing with the offending name so call sites
// can both classify the error with errors.Is and report which lookup failed.
func MissingError(name string) error {
	return fmt.Errorf("setting %q: %w", name, ErrSettingMissing)
}
