package cmd

import (
	"encoding/json"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tvplay-cli/tvplay/color"
	"github.com/tvplay-cli/tvplay/event"
	"github.com/tvplay-cli/tvplay/internal/sim"
	"github.com/tvplay-cli/tvplay/style"
)

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().Bool("live", false, "Simulate a live stream with a DVR window")
	simulateCmd.Flags().String("license-url", "", "Negotiate a license against this server first")
	simulateCmd.Flags().Int("drm-code", 0, "Result code the DRM agent answers with")
	simulateCmd.Flags().Duration("drm-delay", 200*time.Millisecond, "How long the DRM agent takes to answer, 0 for never")
	simulateCmd.Flags().Duration("drm-timeout", 0, "Fail a silent license negotiation after this long")
	simulateCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	simulateCmd.SetOut(os.Stdout)
}

var simulateCmd = &cobra.Command{
	Use:   "simulate [url]",
	Short: "Replay a scripted session without mpv and print the published events",
	Example: "  tvplay simulate\n" +
		"  tvplay simulate --live\n" +
		"  tvplay simulate --license-url https://license.example/rightsmanager.asmx --drm-code 3",
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := sim.Options{
			Live:       lo.Must(cmd.Flags().GetBool("live")),
			LicenseURL: lo.Must(cmd.Flags().GetString("license-url")),
			DRMCode:    lo.Must(cmd.Flags().GetInt("drm-code")),
			DRMDelay:   lo.Must(cmd.Flags().GetDuration("drm-delay")),
			DRMTimeout: lo.Must(cmd.Flags().GetDuration("drm-timeout")),
		}
		if len(args) == 1 {
			opts.URL = args[0]
		}

		result := sim.Run(opts)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			lo.Must0(encoder.Encode(result))
			return
		}

		for _, s := range result.Steps {
			line := s.String()
			if s.Kind == event.Error {
				line = style.Fg(color.Red)(line)
			}
			cmd.Println(line)
		}

		cmd.Println()
		cmd.Printf("%s %s\n", style.Faint("final state"), style.Bold(result.Final))
		if n := len(result.DRMMessages); n > 0 {
			cmd.Printf("%s %d\n", style.Faint("drm messages"), n)
		}
	},
}
