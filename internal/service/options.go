package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"docparse/internal/domain"
)

// CoerceFlags converts the output flag options to booleans in place. Keys
// other than domain.FlagOptionKeys are left untouched.
func CoerceFlags(opts domain.Options, strict bool) error {
	return coerceKeys(opts, domain.FlagOptionKeys, strict, false)
}

// CoerceSwitches converts the feature switches in domain.SwitchOptionKeys to
// booleans in place. A null switch stays null.
func CoerceSwitches(opts domain.Options, strict bool) error {
	return coerceKeys(opts, domain.SwitchOptionKeys, strict, true)
}

func coerceKeys(opts domain.Options, keys []string, strict, keepNull bool) error {
	for _, key := range keys {
		v, ok := opts[key]
		if !ok || (keepNull && v == nil) {
			continue
		}
		if !strict {
			opts[key] = truthy(v)
			continue
		}
		b, err := parseFlag(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidOptions, key, err)
		}
		opts[key] = b
	}
	return nil
}

func parseFlag(v any) (bool, error) {
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return false, fmt.Errorf("not a number: %s", t)
		}
		return f != 0, nil
	case float64:
		return t != 0, nil
	case int:
		return t != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "t", "1", "yes", "y", "on":
			return true, nil
		case "false", "f", "0", "no", "n", "off", "":
			return false, nil
		}
		return false, fmt.Errorf("unrecognized flag value %q", t)
	default:
		return false, fmt.Errorf("unsupported flag type %T", v)
	}
}

// truthy mirrors generic truthiness: zero values and empty containers are
// false, everything else (including the string "0") is true.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
