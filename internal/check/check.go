// Package check provides the --check diagnostics: which encoder would be
// used, its version line, and ffprobe availability.
package check

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vidsqueeze/vidsqueeze/internal/config"
	"github.com/vidsqueeze/vidsqueeze/internal/encoder"
)

// RunCheck reports the resolver outcome and tool versions. Informational
// only; the return value says whether an encode could run at all.
func RunCheck(cfg *config.Config, log *logrus.Logger) bool {
	log.Info("=== encoder check ===")

	r, err := encoder.Resolve(log, cfg.FFmpegPath, cfg.VerifyEncoder)
	if err != nil {
		log.WithError(err).Error("no usable encoder")
		return false
	}

	log.WithFields(logrus.Fields{"path": r.FFmpeg, "source": r.Source.String()}).Info("ffmpeg resolved")
	if line, err := versionLine(r.FFmpeg); err == nil {
		log.Infof("ffmpeg: %s", line)
	} else {
		log.WithError(err).Warn("ffmpeg found but -version failed")
	}

	if line, err := versionLine(r.FFprobe); err == nil {
		log.Infof("ffprobe: %s", line)
	} else {
		log.WithField("path", r.FFprobe).Warn("ffprobe unavailable; metadata probing and progress percentages will fail")
	}

	return true
}

// versionLine runs `bin -version` and returns the first output line.
func versionLine(bin string) (string, error) {
	out, err := exec.Command(bin, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", bin, err)
	}
	line := strings.TrimSpace(string(out))
	if i := strings.Index(line, "\n"); i > 0 {
		line = line[:i]
	}
	return line, nil
}
