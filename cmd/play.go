package cmd

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tvplay-cli/tvplay/config"
	"github.com/tvplay-cli/tvplay/drm"
	"github.com/tvplay-cli/tvplay/event"
	"github.com/tvplay-cli/tvplay/filesystem"
	"github.com/tvplay-cli/tvplay/history"
	"github.com/tvplay-cli/tvplay/key"
	"github.com/tvplay-cli/tvplay/log"
	"github.com/tvplay-cli/tvplay/loop"
	"github.com/tvplay-cli/tvplay/metrics"
	"github.com/tvplay-cli/tvplay/mpv"
	"github.com/tvplay-cli/tvplay/player"
	"github.com/tvplay-cli/tvplay/tui"
)

var errNothingToPlay = errors.New("no URL given and nothing in history")

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().BoolP("continue", "c", false, "Resume the most recently watched stream")
	playCmd.Flags().Bool("no-history", false, "Do not record the playback position")
	playCmd.Flags().String("challenge-file", "", "File holding a full PlayReady challenge XML")

	playCmd.Flags().String("license-url", "", "PlayReady license server URL")
	lo.Must0(viper.BindPFlag(key.DrmLicenseServerURL, playCmd.Flags().Lookup("license-url")))

	playCmd.Flags().String("metrics", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	lo.Must0(viper.BindPFlag(key.MetricsListen, playCmd.Flags().Lookup("metrics")))
}

var playCmd = &cobra.Command{
	Use:   "play [url]",
	Short: "Play a VOD or live stream in mpv with a terminal console",
	Example: "  tvplay play https://cdn.example/movie.mp4\n" +
		"  tvplay play --license-url https://license.example/rightsmanager.asmx https://cdn.example/live.ism/manifest\n" +
		"  tvplay play --continue",
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if file := lo.Must(cmd.Flags().GetString("challenge-file")); file != "" {
			contents, err := filesystem.API().ReadFile(file)
			handleErr(err)
			viper.Set(key.DrmFullChallengeXML, string(contents))
		}

		resume, err := pickTarget(cmd, args)
		handleErr(err)

		CheckDependencies()
		handleErr(play(resume, !lo.Must(cmd.Flags().GetBool("no-history")) && viper.GetBool(key.HistorySave)))
	},
}

// pickTarget resolves the stream to play. The returned entry carries the
// position to resume from, zero for a fresh start.
func pickTarget(cmd *cobra.Command, args []string) (history.Entry, error) {
	if len(args) == 1 {
		saved, err := history.Get()
		if err != nil {
			return history.Entry{}, err
		}
		if entry, ok := saved[args[0]]; ok && entry.Resumable() {
			return *entry, nil
		}
		return history.Entry{URL: args[0]}, nil
	}

	if lo.Must(cmd.Flags().GetBool("continue")) {
		last, ok, err := history.Last()
		if err != nil {
			return history.Entry{}, err
		}
		if !ok {
			return history.Entry{}, errNothingToPlay
		}
		return *last, nil
	}

	entries, err := history.Recent()
	if err != nil {
		return history.Entry{}, err
	}
	if len(entries) == 0 {
		return history.Entry{}, errNothingToPlay
	}

	var index int
	prompt := &survey.Select{
		Message: "Pick a stream:",
		Options: lo.Map(entries, func(e *history.Entry, _ int) string { return e.String() }),
	}
	if err := survey.AskOne(prompt, &index); err != nil {
		return history.Entry{}, err
	}
	return *entries[index], nil
}

func play(target history.Entry, record bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	process := mpv.NewProcess(viper.GetString(key.PlayerMpvPath))
	if err := process.Start(); err != nil {
		return err
	}
	defer process.Close()

	l := loop.New()
	go l.Run(ctx)

	registry := prometheus.NewRegistry()
	collector := metrics.New(registry)
	if addr := viper.GetString(key.MetricsListen); addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr, registry); err != nil {
				log.Warnf("metrics endpoint %s: %s", addr, err)
			}
		}()
	}

	el := mpv.NewElement(process.Socket(), l.Post)
	if err := el.Start(); err != nil {
		return err
	}
	defer el.Close()

	opts, err := config.DRMOptions()
	if err != nil {
		return err
	}
	opts.Scheduler = l
	opts.Observer = collector

	bus := event.NewBus()
	var engine *player.Engine
	l.Do(func() {
		negotiator := drm.NewNegotiator(drm.NewNullAgent, opts)
		engine = player.NewEngine(el, bus, l, config.Playback(target.URL),
			player.WithNegotiator(negotiator),
			player.WithObserver(collector),
		)

		if target.Resumable() {
			var off func()
			off = bus.On(event.Ready, func(event.Event) {
				off()
				if err := engine.Seek(target.Position); err != nil {
					log.Warnf("resume %s at %.0fs: %s", target.URL, target.Position, err)
				}
			})
		}

		if err := engine.Play(); err != nil {
			log.Warnf("start playback: %s", err)
		}
	})

	config.Watch(func(fsnotify.Event) {
		log.Debug("new settings apply to the next playback")
	})

	err = tui.Run(&tui.Session{
		Title:    path.Base(target.URL),
		Playback: engine,
		Bus:      bus,
		Runner:   l,
		Done:     process.Wait(),
	})

	var entry history.Entry
	l.Do(func() {
		entry = history.Entry{
			URL:       target.URL,
			MimeType:  engine.MimeType(),
			MediaType: string(engine.MediaType()),
			Position:  engine.CurrentTime(),
			Duration:  engine.Duration(),
			WatchedAt: time.Now(),
		}
		if derr := engine.Destroy(); derr != nil {
			log.Warnf("destroy playback: %s", derr)
		}
	})

	if record && entry.Position > 0 {
		if herr := history.Save(entry); herr != nil {
			log.Warnf("save history: %s", herr)
		}
	}

	if err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
