// dxlight drives a DX-Light 36-LED monitor backlight over USB HID,
// sampling screen content or running procedural effects.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mauros/dxlight/internal/capture"
	"github.com/mauros/dxlight/internal/config"
	"github.com/mauros/dxlight/internal/engine"
	"github.com/mauros/dxlight/internal/led"
	"github.com/mauros/dxlight/internal/proto"
	"github.com/mauros/dxlight/internal/render"
	"github.com/mauros/dxlight/internal/ws"
)

var version = "dev"

var (
	flagConfig   string
	flagListen   string
	flagLogLevel string
	flagMode     string
	flagMonitor  int
)

func main() {
	root := &cobra.Command{
		Use:           "dxlight",
		Short:         "DX-Light ambilight engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = time.RFC3339
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
			if lvl, err := zerolog.ParseLevel(flagLogLevel); err == nil {
				zerolog.SetGlobalLevel(lvl)
			}
		},
	}
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (trace..error)")

	run := &cobra.Command{
		Use:   "run",
		Short: "Run the render loop headless",
		RunE:  runEngine,
	}
	run.Flags().StringVarP(&flagConfig, "config", "c", "dxlight.yaml", "path to config file")
	run.Flags().StringVar(&flagListen, "listen", "", "preview/control listen address (empty = disabled)")
	run.Flags().StringVar(&flagMode, "mode", "", "override configured mode")
	run.Flags().IntVar(&flagMonitor, "monitor", -1, "override configured monitor index")

	blackout := &cobra.Command{
		Use:   "blackout",
		Short: "Connect, turn the strip off, and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlackout()
		},
	}

	ver := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("dxlight", version)
		},
	}

	root.AddCommand(run, blackout, ver)
	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}

func runEngine(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if c, err := config.Load(flagConfig); err != nil {
		log.Warn().Err(err).Str("path", flagConfig).Msg("config load failed; using defaults")
	} else {
		cfg = *c
	}
	if flagMode != "" {
		cfg.Mode = engine.Mode(flagMode)
		cfg.ApplyModePreset()
	}
	if flagMonitor >= 0 {
		cfg.Monitor = flagMonitor
	}
	cfg.Normalize()

	src, err := capture.NewScreen(cfg.Monitor)
	if err != nil {
		if cfg.Mode.Capture() {
			return err
		}
		log.Warn().Err(err).Msg("no capture source; effect modes only")
		src = nil
	}
	monW, monH := 0, 0
	if src != nil {
		monW, monH = src.Bounds()
	}

	var esrc engine.Source
	if src != nil {
		esrc = src
	}
	eng := engine.New(led.Open, esrc, cfg.Snapshot(monW, monH), log.Logger)
	if err := eng.Start(); err != nil {
		return err
	}

	done := make(chan struct{})
	if flagListen != "" {
		srv := ws.NewServer(eng, cfg, monW, monH)
		mux := http.NewServeMux()
		srv.Routes(mux)
		go srv.RunBroadcast(100*time.Millisecond, done)
		go func() {
			log.Info().Str("addr", flagListen).Msg("preview/control listening")
			if err := http.ListenAndServe(flagListen, mux); err != nil {
				log.Error().Err(err).Msg("http server")
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	close(done)
	log.Info().Msg("shutting down")
	return eng.Stop()
}

func runBlackout() error {
	tr, err := led.Open()
	if err != nil {
		return err
	}
	defer tr.Close()
	var black render.Frame
	reports := proto.Encode(&black, 0, false)
	for i := range reports {
		if err := tr.Send(reports[i][:]); err != nil {
			return err
		}
	}
	log.Info().Msg("strip blacked out")
	return nil
}
