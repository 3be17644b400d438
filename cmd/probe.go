package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tvplay-cli/tvplay/color"
	"github.com/tvplay-cli/tvplay/config"
	"github.com/tvplay-cli/tvplay/icon"
	"github.com/tvplay-cli/tvplay/log"
	"github.com/tvplay-cli/tvplay/mime"
	"github.com/tvplay-cli/tvplay/network"
	"github.com/tvplay-cli/tvplay/style"
)

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().StringP("mime", "m", "", "Explicit MIME type, preferred over the URL extension when supported")
	probeCmd.Flags().BoolP("remote", "r", false, "Ask the server for the MIME type with a HEAD request")
	probeCmd.MarkFlagsMutuallyExclusive("mime", "remote")
	probeCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	probeCmd.SetOut(os.Stdout)
}

// probeResult is what the engine would decide for a URL before attaching it.
type probeResult struct {
	URL       string `json:"url"`
	Extension string `json:"extension"`
	MimeType  string `json:"mime_type"`
	CanPlay   bool   `json:"can_play"`
	DRM       string `json:"drm"`
}

var probeCmd = &cobra.Command{
	Use:   "probe <url>",
	Short: "Show the MIME type and DRM handshake a URL would get",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			url      = args[0]
			explicit = lo.Must(cmd.Flags().GetString("mime"))
			asJson   = lo.Must(cmd.Flags().GetBool("json"))
		)

		if lo.Must(cmd.Flags().GetBool("remote")) {
			ctx, cancel := context.WithTimeout(cmd.Context(), 20*time.Second)
			remote, err := network.ContentType(ctx, url)
			cancel()
			if err != nil {
				log.Warnf("remote content type: %s", err)
			}
			explicit = remote
		}

		mimeType, ok := mime.Resolve(url, explicit)
		result := probeResult{
			URL:       url,
			Extension: mime.Extension(url),
			MimeType:  mimeType,
			CanPlay:   ok,
			DRM:       "none",
		}

		if cfg := config.Playback(url); cfg.DRM != nil && !cfg.DisableDRMSetup {
			mode, err := cfg.DRM.Mode()
			handleErr(err)
			result.DRM = mode.String()
		}

		if asJson {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			lo.Must0(encoder.Encode(result))
			return
		}

		label := style.Fg(color.Purple)
		cmd.Printf("%s %s\n", label("URL"), result.URL)
		cmd.Printf("%s %s\n", label("Extension"), lo.Ternary(result.Extension == "", style.Faint("none"), result.Extension))
		cmd.Printf("%s %s\n", label("MIME type"), lo.Ternary(result.MimeType == "", style.Faint("unknown"), result.MimeType))
		cmd.Printf("%s %s\n", label("DRM"), result.DRM)

		if result.CanPlay {
			cmd.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), "playable")
		} else {
			cmd.Printf("%s %s\n", style.Fg(color.Red)(icon.Get(icon.Fail)), fmt.Sprintf("no supported MIME type for %q", result.URL))
		}
	},
}
