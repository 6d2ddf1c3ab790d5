package setting

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/confstack/confstack/internal/maputil"
)

// CastValue converts value to the Go representation of the definition's
// kind. Casting is idempotent: feeding the result back in returns the same
// value. String inputs are parsed according to the kind (strconv for
// scalars, YAML for compound kinds). A nil value is always returned as nil.
func (d *Definition) CastValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch d.Kind {
	case KindBoolean:
		return castBool(value)
	case KindInteger:
		return castInt(value)
	case KindObject:
		return castObject(value)
	case KindArray:
		return castArray(value)
	case KindString, KindPassword, KindHidden:
		return castString(value)
	default:
		// Untyped settings pass through unchanged.
		return value, nil
	}
}

// StringifyValue renders value for environment projection. Scalars use their
// strconv form; compound values are JSON-encoded so they survive a single
// environment variable entry.
func (d *Definition) StringifyValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("stringify setting %q: %w", d.Name, err)
		}
		return string(encoded), nil
	}
}

func castBool(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "t", "yes", "y", "on", "1":
			return true, nil
		case "false", "f", "no", "n", "off", "0", "":
			return false, nil
		}
		return nil, fmt.Errorf("cannot cast %q to boolean", v)
	default:
		return nil, fmt.Errorf("cannot cast %T to boolean", value)
	}
}

func castInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return nil, fmt.Errorf("cannot cast %v to integer without truncation", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("cannot cast %q to integer: %w", v, err)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("cannot cast %T to integer", value)
	}
}

func castObject(value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		return v, nil
	case map[any]any:
		return maputil.Normalize(v), nil
	case string:
		var out map[string]any
		if err := yaml.Unmarshal([]byte(v), &out); err != nil {
			return nil, fmt.Errorf("cannot cast %q to object: %w", v, err)
		}
		return out, nil
	default:
		return decodeCompound[map[string]any](value, "object")
	}
}

func castArray(value any) (any, error) {
	switch v := value.(type) {
	case []any:
		return v, nil
	case string:
		var out []any
		if err := yaml.Unmarshal([]byte(v), &out); err != nil {
			return nil, fmt.Errorf("cannot cast %q to array: %w", v, err)
		}
		return out, nil
	default:
		return decodeCompound[[]any](value, "array")
	}
}

func castString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		// Compound values under a string kind are left alone rather than
		// guessed at.
		return value, nil
	}
}

// decodeCompound coerces loosely-typed maps and slices (as produced by YAML
// or JSON decoders with concrete element types) into the canonical compound
// representation.
func decodeCompound[T any](value any, kind string) (any, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &out})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(value); err != nil {
		return nil, fmt.Errorf("cannot cast %T to %s: %w", value, kind, err)
	}
	return out, nil
}
