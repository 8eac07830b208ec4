package config

// CLI flag parsing and help text. Flags are grouped into encoding, transform,
// behavior, and utility sections; positional arguments are the inputs.

import (
	"flag"
	"fmt"
	"os"
)

// version is shown in --version and help; override at build time with
// -ldflags "-X ...config.version=".
var version = "1.0.0-dev"

// ParseFlags parses args (normally os.Args[1:]) into cfg. On --help or
// --version it prints and exits. Flag values layer on top of whatever
// [DefaultConfig] and [LoadFile] already set.
func ParseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("vidsqueeze", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	var showHelp, showVersion bool

	defineEncodingFlags(fs, cfg)
	defineTransformFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg)
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&showHelp, "h", false, "Same as --help")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(fs)
		os.Exit(0)
	}
	if showVersion {
		fmt.Fprintln(os.Stdout, "vidsqueeze v"+version)
		os.Exit(0)
	}

	cfg.Inputs = fs.Args()
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}
	return nil
}

// defineEncodingFlags registers quality, preset, format, and output.
func defineEncodingFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Quality, "quality", cfg.Quality, "Target quality 0-100 (higher is better)")
	fs.IntVar(&cfg.Quality, "q", cfg.Quality, "Same as --quality")
	fs.StringVar(&cfg.Preset, "preset", cfg.Preset, "Encoding preset: speed | quality")
	fs.StringVar(&cfg.Preset, "p", cfg.Preset, "Same as --preset")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "Output format: mp4 | mov | webm | avi | mkv")
	fs.StringVar(&cfg.Format, "f", cfg.Format, "Same as --format")
	fs.StringVar(&cfg.Output, "output", cfg.Output, "Output path (single input only)")
	fs.StringVar(&cfg.Output, "o", cfg.Output, "Same as --output")
}

// defineTransformFlags registers the geometry and audio transforms.
func defineTransformFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Width, "width", cfg.Width, "Target width (0 keeps source)")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "Target height (0 keeps source)")
	fs.IntVar(&cfg.FPS, "fps", cfg.FPS, "Target frame rate (0 keeps source)")
	fs.IntVar(&cfg.Rotate, "rotate", cfg.Rotate, "Rotate by degrees: 0, ±90, ±180, ±270")
	fs.BoolVar(&cfg.FlipH, "flip-h", cfg.FlipH, "Flip horizontally")
	fs.BoolVar(&cfg.FlipV, "flip-v", cfg.FlipV, "Flip vertically")
	fs.StringVar(&cfg.Crop, "crop", cfg.Crop, "Crop rectangle WxH:X:Y")
	fs.BoolVar(&cfg.Mute, "mute", cfg.Mute, "Remove the audio stream")
}

// defineBehaviorFlags registers overwrite, modes, encoder resolution, and logging.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.Overwrite, "overwrite", cfg.Overwrite, "Replace existing output files")
	fs.BoolVar(&cfg.Overwrite, "y", cfg.Overwrite, "Same as --overwrite")
	fs.BoolVar(&cfg.Info, "info", cfg.Info, "Print input metadata and exit")
	fs.BoolVar(&cfg.CheckOnly, "check", cfg.CheckOnly, "Run encoder diagnostics and exit")
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "Machine-readable results on stdout")
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "Trusted ffmpeg path (fatal if unusable)")
	fs.BoolVar(&cfg.VerifyEncoder, "verify-encoder", cfg.VerifyEncoder, "Verify the bundled encoder with -version")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose (debug) logging")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
	// The config file is located and loaded before flag parsing (flags must
	// override it); the flag is registered here so it parses cleanly.
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "Config file path (default: "+DefaultConfigPath()+")")
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), `vidsqueeze v%s - compress videos with ffmpeg

Usage:
  vidsqueeze [flags] <input> [input...]

Inputs may be files or directories; directories expand to the video files
they contain. Without --output, each result is written next to its input as
<name>_compressed.<ext>.

Flags:
`, version)
	fs.PrintDefaults()
}
