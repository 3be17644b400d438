// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Playback Engine - these keys tune readiness polling and live/DVR detection.
const (
	PlaybackMinimumDvrSize        = "playback.minimum_dvr_size"
	PlaybackLiveThreshold         = "playback.live_threshold"
	PlaybackReadyThreshold        = "playback.ready_threshold"
	PlaybackReadyBackoffMs        = "playback.ready_backoff_ms"
	PlaybackReadyBackoffCeilingMs = "playback.ready_backoff_ceiling_ms"
)

// DRM Negotiation - these keys describe the license acquisition handshake.
const (
	DrmFullChallengeXML = "drm.full_challenge_xml"
	DrmLicenseServerURL = "drm.license_server_url"
	DrmDisableSetup     = "drm.disable_setup"
	DrmDispatchFailure  = "drm.dispatch_failure"
	DrmConcurrency      = "drm.concurrency"
	DrmTimeoutMs        = "drm.timeout_ms"
)

// Media Backend - these keys configure the external process hosting the media element.
const (
	PlayerMpvPath = "player.mpv_path"
)

// History Tracking - these keys configure the persistence of playback positions.
const (
	HistorySave = "history.save"
)

// Metrics - these keys configure the Prometheus exposition endpoint.
const (
	MetricsListen = "metrics.listen"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored = "cli.colored"
)
