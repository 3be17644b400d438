package config

import (
	"encoding/json"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/spf13/viper"
	"github.com/tvplay-cli/tvplay/drm"
	"github.com/tvplay-cli/tvplay/key"
	"github.com/tvplay-cli/tvplay/media"
	"github.com/tvplay-cli/tvplay/player"
)

func millis(k string) time.Duration {
	return time.Duration(viper.GetInt(k)) * time.Millisecond
}

// Playback builds the engine configuration for src from the current settings.
func Playback(src string) player.Config {
	cfg := player.Config{
		Src:                 src,
		DisableDRMSetup:     viper.GetBool(key.DrmDisableSetup),
		MinimumDVRSize:      viper.GetFloat64(key.PlaybackMinimumDvrSize),
		LiveStateThreshold:  viper.GetFloat64(key.PlaybackLiveThreshold),
		ReadyThreshold:      media.ReadyState(viper.GetInt(key.PlaybackReadyThreshold)),
		ReadyBackoff:        millis(key.PlaybackReadyBackoffMs),
		ReadyBackoffCeiling: millis(key.PlaybackReadyBackoffCeilingMs),
	}

	if d := DRM(); !d.IsZero() {
		cfg.DRM = &d
	}
	return cfg
}

// DRM returns the configured license description.
func DRM() drm.Config {
	return drm.Config{
		FullChallengeXML: viper.GetString(key.DrmFullChallengeXML),
		LicenseServerURL: viper.GetString(key.DrmLicenseServerURL),
	}
}

// DRMOptions returns the negotiator policies. Scheduler, Container and
// Observer are left for the caller.
func DRMOptions() (drm.Options, error) {
	policy, err := drm.ParseDispatchPolicy(viper.GetString(key.DrmDispatchFailure))
	if err != nil {
		return drm.Options{}, err
	}

	concurrency, err := drm.ParseConcurrency(viper.GetString(key.DrmConcurrency))
	if err != nil {
		return drm.Options{}, err
	}

	return drm.Options{
		DispatchFailure: policy,
		Concurrency:     concurrency,
		Timeout:         millis(key.DrmTimeoutMs),
	}, nil
}

// Schema returns the indented JSON schema of the engine configuration.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&player.Config{})
	schema.Title = "tvplay playback configuration"
	return json.MarshalIndent(schema, "", "  ")
}
