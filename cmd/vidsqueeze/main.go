// Command vidsqueeze compresses video files by driving an external ffmpeg
// encoder: it validates paths, compiles encode settings into an argument
// plan, supervises the encoder with live progress, and commits outputs
// atomically.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vidsqueeze/vidsqueeze/internal/check"
	"github.com/vidsqueeze/vidsqueeze/internal/config"
	"github.com/vidsqueeze/vidsqueeze/internal/display"
	"github.com/vidsqueeze/vidsqueeze/internal/encoder"
	"github.com/vidsqueeze/vidsqueeze/internal/logging"
	"github.com/vidsqueeze/vidsqueeze/internal/pipeline"
	"github.com/vidsqueeze/vidsqueeze/internal/probe"
)

// exitCancelled matches the conventional exit status for SIGINT.
const exitCancelled = 130

func main() {
	os.Exit(run())
}

func run() int {
	// Config layers: defaults, then the YAML file, then CLI flags.
	cfg := config.DefaultConfig()
	if path := config.ConfigPathFromArgs(os.Args[1:]); path != "" {
		if err := config.LoadFile(&cfg, path); err != nil {
			fmt.Fprintf(os.Stderr, "vidsqueeze: %v\n", err)
			return 1
		}
	}
	if err := config.ParseFlags(&cfg, os.Args[1:]); err != nil {
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "vidsqueeze: %v\n", err)
		return 1
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vidsqueeze: %v\n", err)
		return 1
	}

	if cfg.CheckOnly {
		if check.RunCheck(&cfg, log) {
			return 0
		}
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Warn("cancellation requested, stopping after the current cleanup")
		cancel()
	}()

	if cfg.Info {
		return runInfo(ctx, &cfg, log)
	}

	var sink pipeline.Sink
	if cfg.JSON {
		sink = display.NewJSONSink(os.Stdout)
	} else {
		sink = display.NewConsoleSink(os.Stderr, log)
	}

	o, err := pipeline.NewOrchestrator(&cfg, log, sink)
	if err != nil {
		log.Error(err)
		return 1
	}

	summary, _, err := o.Run(ctx)
	if err != nil {
		log.Error(err)
		return 1
	}

	if ctx.Err() != nil || summary.Cancelled > 0 {
		return exitCancelled
	}
	if summary.Failed > 0 {
		return 1
	}
	return 0
}

// runInfo probes each input and prints its metadata without compressing.
func runInfo(ctx context.Context, cfg *config.Config, log *logrus.Logger) int {
	enc, err := encoder.Resolve(log, cfg.FFmpegPath, cfg.VerifyEncoder)
	if err != nil {
		log.Error(err)
		return 1
	}

	files, err := pipeline.ExpandInputs(cfg.Inputs)
	if err != nil {
		log.Error(err)
		return 1
	}

	type fileInfo struct {
		Path      string  `json:"path"`
		Format    string  `json:"format"`
		Duration  float64 `json:"duration_seconds"`
		Width     int     `json:"width"`
		Height    int     `json:"height"`
		FrameRate float64 `json:"frame_rate"`
		Size      int64   `json:"size_bytes"`
	}

	var infos []fileInfo
	failed := false
	for _, f := range files {
		pr, err := probe.Probe(ctx, enc.FFprobe, f)
		if err != nil {
			log.WithField("input", f).WithError(err).Error("probe failed")
			failed = true
			continue
		}
		infos = append(infos, fileInfo{
			Path:      f,
			Format:    pr.FormatName,
			Duration:  pr.Duration,
			Width:     pr.Width,
			Height:    pr.Height,
			FrameRate: pr.FrameRate,
			Size:      pr.Size,
		})
	}

	if cfg.JSON {
		out := json.NewEncoder(os.Stdout)
		out.SetIndent("", "  ")
		_ = out.Encode(infos)
	} else {
		for _, in := range infos {
			dur := time.Duration(in.Duration * float64(time.Second))
			fmt.Printf("%s\n  format: %s\n  duration: %s\n  video: %dx%d @ %.3g fps\n  size: %s\n",
				in.Path, in.Format, display.FormatDuration(dur),
				in.Width, in.Height, in.FrameRate, display.FormatBytes(in.Size))
		}
	}

	if failed {
		return 1
	}
	return 0
}
