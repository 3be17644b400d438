package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tvplay-cli/tvplay/color"
	"github.com/tvplay-cli/tvplay/history"
	"github.com/tvplay-cli/tvplay/icon"
	"github.com/tvplay-cli/tvplay/style"
	"github.com/tvplay-cli/tvplay/util"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	historyCmd.SetOut(os.Stdout)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the recently played streams and their saved positions",
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := history.Recent()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			lo.Must0(encoder.Encode(entries))
			return
		}

		if len(entries) == 0 {
			cmd.Println(style.Faint("No history yet"))
			return
		}

		for _, e := range entries {
			progress := style.Fg(color.Live)("live")
			if e.MediaType != "live" {
				progress = fmt.Sprintf("%s / %s  %.0f%%", util.FormatClock(e.Position), util.FormatClock(e.Duration), e.Percentage())
			}

			cmd.Printf("%s %s\n", style.Fg(color.Title)(e.URL), style.Faint(e.WatchedAt.Format("2006-01-02 15:04")))
			cmd.Printf("  %s\n", progress)
		}
	},
}

func init() {
	historyCmd.AddCommand(historyRemoveCmd)
}

var historyRemoveCmd = &cobra.Command{
	Use:     "remove <url>",
	Short:   "Forget the saved position of a stream",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		entries, err := history.Recent()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return lo.Map(entries, func(e *history.Entry, _ int) string { return e.URL }), cobra.ShellCompDirectiveNoFileComp
	},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(history.Remove(args[0]))
		fmt.Printf("%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), args[0])
	},
}
