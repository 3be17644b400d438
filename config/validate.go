package config

import (
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/tvplay-cli/tvplay/drm"
	"github.com/tvplay-cli/tvplay/icon"
	"github.com/tvplay-cli/tvplay/key"
	"github.com/tvplay-cli/tvplay/media"
)

func nonNegative(v any) error {
	if n, ok := v.(int); ok && n < 0 {
		return fmt.Errorf("must not be negative, got %d", n)
	}
	if n, ok := v.(float64); ok && n < 0 {
		return fmt.Errorf("must not be negative, got %g", n)
	}
	return nil
}

var validators = map[string]func(v any) error{
	key.PlaybackReadyThreshold: func(v any) error {
		state := media.ReadyState(v.(int))
		if state < media.HaveMetadata || state > media.HaveEnoughData {
			return fmt.Errorf("must be between %d and %d, got %d", media.HaveMetadata, media.HaveEnoughData, state)
		}
		return nil
	},
	key.DrmDispatchFailure: func(v any) error {
		_, err := drm.ParseDispatchPolicy(v.(string))
		return err
	},
	key.DrmConcurrency: func(v any) error {
		_, err := drm.ParseConcurrency(v.(string))
		return err
	},
	key.IconsVariant: func(v any) error {
		if !lo.Contains(icon.AvailableVariants(), v.(string)) {
			return fmt.Errorf("unknown variant %q", v)
		}
		return nil
	},
	key.LogsLevel: func(v any) error {
		_, err := logrus.ParseLevel(v.(string))
		return err
	},
	key.PlaybackMinimumDvrSize:        nonNegative,
	key.PlaybackLiveThreshold:         nonNegative,
	key.PlaybackReadyBackoffMs:        nonNegative,
	key.PlaybackReadyBackoffCeilingMs: nonNegative,
	key.DrmTimeoutMs:                  nonNegative,
}

// Validate checks a value parsed for k before it is written.
// Keys without constraints accept any value of their default's type.
func Validate(k string, v any) error {
	validate, ok := validators[k]
	if !ok {
		return nil
	}
	if err := validate(v); err != nil {
		return fmt.Errorf("invalid value for %s: %w", k, err)
	}
	return nil
}

// Parse converts the command-line values for k to the type of its default
// and validates the result.
func Parse(k string, values []string) (any, error) {
	field, ok := Default[k]
	if !ok {
		return nil, fmt.Errorf("unknown key %s", k)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no value given for %s", k)
	}

	var (
		v   any
		err error
	)
	switch field.Value.(type) {
	case string:
		v = values[0]
	case int:
		v, err = strconv.Atoi(values[0])
	case float64:
		v, err = strconv.ParseFloat(values[0], 64)
	case bool:
		v, err = strconv.ParseBool(values[0])
	case []string:
		v = values
	default:
		return nil, fmt.Errorf("unsupported type %T for %s", field.Value, k)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s value for %s: %q", field.typeName(), k, values[0])
	}

	return v, Validate(k, v)
}
