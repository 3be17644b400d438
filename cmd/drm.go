package cmd

import (
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tvplay-cli/tvplay/config"
	"github.com/tvplay-cli/tvplay/drm"
	"github.com/tvplay-cli/tvplay/filesystem"
	"github.com/tvplay-cli/tvplay/key"
)

func init() {
	rootCmd.AddCommand(drmCmd)
}

var drmCmd = &cobra.Command{
	Use:   "drm",
	Short: "Inspect PlayReady license messages",
}

func init() {
	drmCmd.AddCommand(drmEnvelopeCmd)
	drmEnvelopeCmd.Flags().String("challenge-file", "", "File holding a full PlayReady challenge XML")
	drmEnvelopeCmd.Flags().String("license-url", "", "PlayReady license server URL")
	drmEnvelopeCmd.Flags().Bool("clear", false, "Print the license clear message")
	drmEnvelopeCmd.MarkFlagsMutuallyExclusive("clear", "challenge-file")
	drmEnvelopeCmd.MarkFlagsMutuallyExclusive("clear", "license-url")
	drmEnvelopeCmd.SetOut(os.Stdout)
}

var drmEnvelopeCmd = &cobra.Command{
	Use:   "envelope",
	Short: "Print the initiator XML sent to the DRM agent",
	Long: "Print the PlayReady initiator XML sent to the DRM agent for the configured license settings.\n" +
		"Flags override the configuration for this invocation.",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("clear")) {
			cmd.Println(drm.ClearEnvelope())
			return
		}

		if file := lo.Must(cmd.Flags().GetString("challenge-file")); file != "" {
			contents, err := filesystem.API().ReadFile(file)
			handleErr(err)
			viper.Set(key.DrmFullChallengeXML, string(contents))
		}
		if url := lo.Must(cmd.Flags().GetString("license-url")); url != "" {
			viper.Set(key.DrmLicenseServerURL, url)
		}

		mode, envelope, err := config.DRM().Envelope()
		handleErr(err)

		cmd.PrintErrf("%s\n", mode)
		cmd.Println(envelope)
	},
}
