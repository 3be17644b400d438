package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/tvplay-cli/tvplay/color"
	"github.com/tvplay-cli/tvplay/constant"
	"github.com/tvplay-cli/tvplay/key"
	"github.com/tvplay-cli/tvplay/style"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON includes the current value next to the default.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlaybackMinimumDvrSize, 60.0, "Live window, in seconds, from which DVR is enabled")
	register(key.PlaybackLiveThreshold, 3.0, "Distance, in seconds, from the live edge that still counts as live")
	register(key.PlaybackReadyThreshold, 3, "Ready state the element must reach before the ready event.\nFrom 1 (HAVE_METADATA) to 4 (HAVE_ENOUGH_DATA)")
	register(key.PlaybackReadyBackoffMs, 100, "First readiness retry delay in milliseconds. Every retry doubles it")
	register(key.PlaybackReadyBackoffCeilingMs, 0, "Maximum readiness retry delay in milliseconds.\n0 keeps it unbounded")
	register(key.DrmFullChallengeXML, "", "PlayReady header sent as a full license challenge.\nTakes precedence over the license server URL")
	register(key.DrmLicenseServerURL, "", "License server URL overriding the one in the content header")
	register(key.DrmDisableSetup, false, "Attach protected sources without negotiating a license")
	register(key.DrmDispatchFailure, "succeed", "Outcome of a license request the DRM agent cannot dispatch.\nAvailable options are: succeed, fail")
	register(key.DrmConcurrency, "queue", "What to do with a license request while another one is pending.\nAvailable options are: queue, reject")
	register(key.DrmTimeoutMs, 0, "Fail a DRM transaction after this many milliseconds without an answer.\n0 waits forever")
	register(key.PlayerMpvPath, "", "Path to the mpv binary.\nEmpty looks it up in $PATH")
	register(key.HistorySave, true, "Save the playback position on exit")
	register(key.MetricsListen, "", "Address serving Prometheus metrics, e.g. :9090.\nEmpty disables the endpoint")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
