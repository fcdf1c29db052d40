// Command prayer-status prints a single line for status bars such as tmux:
//
//	set -g status-right '#(prayer-status --format short-name-and-remaining)'
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/prayer-clock/internal/cli"
	"github.com/smokyabdulrahman/prayer-clock/internal/config"
	"github.com/smokyabdulrahman/prayer-clock/internal/logging"
	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0"
var version = "dev"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type flags struct {
	location   string
	apiKey     string
	format     string
	timeFormat string
	configPath string
	cacheDir   string
	logLevel   string
	noCache    bool
	version    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var f flags
	fs := pflag.NewFlagSet("prayer-status", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.location, "location", "", "Prayer API location key, e.g. dhaka")
	fs.StringVar(&f.apiKey, "api-key", "", "RapidAPI key for the prayer-time API")
	fs.StringVarP(&f.format, "format", "f", prayer.FormatNameAndTime, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, or a custom Go template (e.g. '{{.Name}} in {{.Remaining}}'). Template fields: .Name, .ShortName, .Time, .Remaining, .Hours, .Minutes, .Seconds")
	fs.StringVar(&f.timeFormat, "time-format", "", "Time format: 12h or 24h")
	fs.StringVar(&f.configPath, "config", "", "Config file (default: ~/.config/prayer-clock/config.json)")
	fs.StringVar(&f.cacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/prayer-clock/)")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	fs.BoolVar(&f.noCache, "no-cache", false, "Always fetch from the network")
	fs.BoolVarP(&f.version, "version", "v", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	if f.version {
		fmt.Fprintf(stdout, "prayer-status %s\n", version)
		return 0
	}

	if err := status(ctx, fs, f, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func status(ctx context.Context, fs *pflag.FlagSet, f flags, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(fs, f)
	if err != nil {
		return err
	}
	log := logging.New(stderr, cfg.LogLevel)

	s, err := cli.OpenSession(ctx, cfg, cli.SessionOptions{NoCache: f.noCache, SkipSun: true}, log)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Fetcher.Run(ctx); err != nil {
		return err
	}

	line, err := cli.NextLine(s.Store, s.Now(), f.format, prayer.LayoutFor(cfg.TimeFormat))
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, line)
	return nil
}

// loadConfig merges flags > environment > config file > defaults.
func loadConfig(fs *pflag.FlagSet, f flags) (config.Config, error) {
	path := f.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}

	file, err := config.LoadFrom(path)
	if err != nil {
		return config.Config{}, err
	}
	env, err := config.LoadEnv(".env")
	if err != nil {
		return config.Config{}, err
	}

	cfg := *file
	cfg.ApplyEnv(env)
	if fs.Changed("location") {
		cfg.Location = f.location
	}
	if fs.Changed("api-key") {
		cfg.APIKey = f.apiKey
	}
	if fs.Changed("time-format") {
		cfg.TimeFormat = f.timeFormat
	}
	if fs.Changed("cache-dir") {
		cfg.CacheDir = f.cacheDir
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	return cfg.WithDefaults(), nil
}
