package cmd

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tvplay-cli/tvplay/color"
	"github.com/tvplay-cli/tvplay/config"
	"github.com/tvplay-cli/tvplay/style"
	"github.com/tvplay-cli/tvplay/where"
	"golang.org/x/exp/slices"
)

type envVar struct {
	Section string `json:"section"`
	Name    string `json:"name"`
	Value   string `json:"value,omitempty"`
	Default any    `json:"default,omitempty"`
}

// envVars lists every supported variable, grouped by the config section
// it overrides, with the config path override under "paths".
func envVars() []envVar {
	vars := lo.Map(config.EnvExposed, func(k string, _ int) envVar {
		field := config.Default[k]
		section, _, _ := strings.Cut(k, ".")
		name := field.Env()
		return envVar{Section: section, Name: name, Value: os.Getenv(name), Default: field.Value}
	})
	vars = append(vars, envVar{Section: "paths", Name: where.EnvConfigPath, Value: os.Getenv(where.EnvConfigPath)})

	slices.SortFunc(vars, func(a, b envVar) int {
		if c := strings.Compare(a.Section, b.Section); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return vars
}

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Display only environment variables that are currently defined")
	envCmd.Flags().BoolP("unset-only", "u", false, "Display only environment variables that are currently undefined")
	envCmd.Flags().BoolP("json", "j", false, "Output as JSON")

	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

// envCmd displays the environment overrides for playback, DRM and player settings.
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Display the collection of supported environment variables",
	Long:  `Display the environment variables overriding playback, DRM and player settings, grouped by section.`,
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))

		vars := lo.Filter(envVars(), func(v envVar, _ int) bool {
			present := v.Value != ""
			return !(setOnly && !present) && !(unsetOnly && present)
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			handleErr(enc.Encode(vars))
			return
		}

		var section string
		for _, v := range vars {
			if v.Section != section {
				section = v.Section
				cmd.Println(style.Faint("# " + section))
			}

			cmd.Print(style.New().Bold(true).Foreground(color.Purple).Render(v.Name))
			cmd.Print("=")

			switch {
			case v.Value != "":
				cmd.Println(style.Fg(color.Green)(v.Value))
			case v.Default != nil:
				cmd.Println(style.Fg(color.Red)("unset") + style.Faint(" (default "+style.Fg(color.Yellow)(stringify(v.Default))+")"))
			default:
				cmd.Println(style.Fg(color.Red)("unset"))
			}
		}
	},
}

func stringify(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "?"
	}
	return string(raw)
}
