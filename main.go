package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/karmic64/makegsf/config"
	"github.com/karmic64/makegsf/pkg/gsf/interp"
	"github.com/karmic64/makegsf/pkg/gsf/logger"
	"github.com/karmic64/makegsf/pkg/gsf/manifest"
	"github.com/karmic64/makegsf/pkg/gsf/repl"
	"github.com/karmic64/makegsf/pkg/gsf/textconv"
)

// Version is set at build time via -ldflags
var Version = "0.1.0-dev"

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("makegsf", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		configPath   = flags.String("config", "", "Path to config file")
		manifestPath = flags.String("manifest", "", "Record emitted files in a SQLite database")
		level        = flags.String("level", "", "Compression level (fastest, default, best, none, huffman)")
		quiet        = flags.Bool("q", false, "Only print warnings and errors")
		interactive  = flags.Bool("i", false, "Interactive mode (typed lines are UTF-8)")
		showVersion  = flags.Bool("version", false, "Show version")
		showHelp     = flags.Bool("help", false, "Show help")
	)

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showHelp {
		printUsage(stdout)
		return nil
	}

	if *showVersion {
		fmt.Fprintf(stdout, "makegsf version %s\n", Version)
		return nil
	}

	script := flags.Arg(0)
	if script == "" && !*interactive {
		printUsage(stderr)
		return fmt.Errorf("no script file given")
	}

	scriptDir := "."
	if script != "" {
		scriptDir = filepath.Dir(script)
	}
	cfg, configFile, err := config.LoadWithPath(*configPath, scriptDir, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Apply CLI overrides
	if *level != "" {
		cfg.Compression.Level = *level
	}
	if *quiet {
		cfg.Logging.Level = "warn"
	}
	if *manifestPath != "" {
		cfg.Manifest = *manifestPath
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	bridge, err := textconv.NewBridge(cfg.ScriptEncoding, cfg.FilenameEncoding)
	if err != nil {
		return fmt.Errorf("setting up encodings: %w", err)
	}

	out, closeOut, err := openOutput(cfg.Logging.Output, stdout, stderr)
	if err != nil {
		return err
	}
	defer closeOut()

	logLevel, _ := logger.ParseLevel(cfg.Logging.Level)
	outFile, _ := out.(*os.File)
	sink := logger.NewWriter(out)
	rep := logger.NewReporter(sink, logLevel, logger.ColorEnabled(cfg.Logging.Color, outFile))
	if configFile != "" {
		rep.Infof("using config %s", configFile)
	}

	opts := interp.Options{
		Bridge:      bridge,
		Compression: cfg.Compression.Level,
		Reporter:    rep,
	}

	if cfg.Manifest != "" {
		m, err := manifest.Open(cfg.Manifest)
		if err != nil {
			return fmt.Errorf("opening manifest: %w", err)
		}
		defer m.Close()
		opts.Manifest = m
		rep.Infof("recording run %d in %s", m.Run(), m.Path())
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if *interactive {
		opts.Name = "<stdin>"
		in, err := interp.New(opts)
		if err != nil {
			return err
		}
		if err := repl.Start(in, stdout, Version); err != nil {
			return err
		}
		return sink.Err()
	}

	in, err := interp.New(opts)
	if err != nil {
		return err
	}
	stats, err := in.RunFile(script)
	if err != nil {
		return err
	}

	rep.Infof("%s written (%s), %s, %s",
		english.Plural(stats.FilesWritten, "file", ""),
		humanize.Bytes(uint64(stats.BytesWritten)),
		english.Plural(stats.Errors, "error", ""),
		english.Plural(stats.Warnings, "warning", ""))
	if err := sink.Err(); err != nil {
		return fmt.Errorf("writing diagnostics: %w", err)
	}
	return nil
}

// openOutput returns the writer diagnostics go to.
func openOutput(name string, stdout, stderr io.Writer) (io.Writer, func(), error) {
	switch name {
	case "", "stdout":
		return stdout, func() {}, nil
	case "stderr":
		return stderr, func() {}, nil
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log output: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `makegsf - build GSF rip sets from a script

Usage:
  makegsf [options] <scriptfile>
  makegsf -i [options]

Options:
  -config PATH     Path to config file (default: auto-detect)
  -manifest PATH   Record emitted files in a SQLite database
  -level NAME      Compression level: fastest, default, best, none, huffman
  -q               Only print warnings and errors
  -i               Interactive mode; typed lines are read as UTF-8,
                   script_encoding only applies to script files
  -version         Show version
  -help            Show this help

Config Resolution:
  1. -config flag
  2. MAKEGSF_CONFIG environment variable
  3. makegsf.yaml next to the script

Examples:
  makegsf songs.txt                      Build the files listed in songs.txt
  makegsf -level best songs.txt          Smallest output
  makegsf -manifest built.db songs.txt   Keep a record of what was written

`)
}
