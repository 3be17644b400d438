package player

import (
	"time"

	"github.com/tvplay-cli/tvplay/drm"
	"github.com/tvplay-cli/tvplay/media"
)

const (
	// DefaultMinimumDVRSize is the live window, in seconds, from which DVR is enabled.
	DefaultMinimumDVRSize = 60.0
	// DefaultLiveStateThreshold is the distance, in seconds, from the live edge still considered live.
	DefaultLiveStateThreshold = 3.0
	// DefaultReadyBackoff is the first readiness retry delay.
	DefaultReadyBackoff = 100 * time.Millisecond
)

// Config configures an Engine. Zero numeric fields take their defaults.
type Config struct {
	// Src is attached on construction when set.
	Src string `json:"src,omitempty" jsonschema:"description=Initial source URL"`

	// DRM, when set, is negotiated before every source attach.
	DRM *drm.Config `json:"drm,omitempty"`

	DisableDRMSetup bool `json:"disable_drm_setup,omitempty" jsonschema:"description=Attach protected sources without negotiating a license"`

	// MinimumDVRSize in seconds.
	MinimumDVRSize float64 `json:"minimum_dvr_size,omitempty" jsonschema:"default=60"`

	// LiveStateThreshold in seconds.
	LiveStateThreshold float64 `json:"live_state_threshold,omitempty" jsonschema:"default=3"`

	// ReadyThreshold is the ready state the element must reach before the ready event.
	ReadyThreshold media.ReadyState `json:"ready_threshold,omitempty" jsonschema:"minimum=1,maximum=4,default=3"`

	// ReadyBackoff is the first readiness retry delay. Every retry doubles it.
	ReadyBackoff time.Duration `json:"ready_backoff,omitempty"`

	// ReadyBackoffCeiling caps the retry delay. Zero keeps it unbounded.
	ReadyBackoffCeiling time.Duration `json:"ready_backoff_ceiling,omitempty"`
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.MinimumDVRSize <= 0 {
		c.MinimumDVRSize = DefaultMinimumDVRSize
	}
	if c.LiveStateThreshold <= 0 {
		c.LiveStateThreshold = DefaultLiveStateThreshold
	}
	if c.ReadyThreshold <= media.HaveNothing {
		c.ReadyThreshold = media.HaveFutureData
	}
	if c.ReadyBackoff <= 0 {
		c.ReadyBackoff = DefaultReadyBackoff
	}
	if c.ReadyBackoffCeiling < 0 {
		c.ReadyBackoffCeiling = 0
	}
	return c
}

// needsDRM reports whether sources must wait for a license.
func (c Config) needsDRM() bool {
	return !c.DisableDRMSetup && c.DRM != nil && !c.DRM.IsZero()
}
