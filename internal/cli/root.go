package cli

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/prayer-clock/internal/config"
	"github.com/smokyabdulrahman/prayer-clock/internal/display"
	"github.com/smokyabdulrahman/prayer-clock/internal/logging"
	"github.com/smokyabdulrahman/prayer-clock/internal/prefs"
)

// dotenvFile is loaded from the working directory before the environment
// is read.
const dotenvFile = ".env"

// options holds the global flags and the state derived from them in
// PersistentPreRunE. Every subcommand of one root shares a single instance.
type options struct {
	location   string
	latitude   float64
	longitude  float64
	timezone   string
	apiKey     string
	timeFormat string
	logLevel   string
	configPath string
	noCache    bool
	autoLocate bool
	json       bool

	// cfg is the merged configuration: flags > env > file > defaults.
	cfg config.Config
	log zerolog.Logger
}

// NewRootCmd creates the root command for the prayer-clock CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{log: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:     "prayer-clock",
		Short:   "Prayer times with a live countdown to the next prayer",
		Long:    "Fetches today's five daily prayer times, tells you which prayer is in effect\nand counts down to the next one.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		// Default action: show today's prayer schedule.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToday(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.location, "location", "", "Prayer API location key, e.g. dhaka (overrides config)")
	pf.Float64Var(&opts.latitude, "lat", 0, "Latitude for sunrise/sunset")
	pf.Float64Var(&opts.longitude, "lon", 0, "Longitude for sunrise/sunset")
	pf.StringVar(&opts.timezone, "timezone", "", "IANA timezone, e.g. Asia/Dhaka")
	pf.StringVar(&opts.apiKey, "api-key", "", "RapidAPI key for the prayer-time API")
	pf.StringVar(&opts.timeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&opts.configPath, "config", "", "Config file (default: ~/.config/prayer-clock/config.json)")
	pf.BoolVar(&opts.noCache, "no-cache", false, "Always fetch from the network")
	pf.BoolVar(&opts.autoLocate, "auto-locate", false, "Detect location from your public IP")
	pf.BoolVar(&opts.json, "json", false, "Output as JSON (where supported)")

	rootCmd.AddCommand(newNextCmd(opts))
	rootCmd.AddCommand(newQueryCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newThemeCmd(opts))

	return rootCmd
}

// load resolves the config path, merges every configuration layer and
// builds the logger.
func (o *options) load(cmd *cobra.Command) error {
	path, err := o.resolveConfigPath()
	if err != nil {
		return err
	}

	fileCfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	env, err := config.LoadEnv(dotenvFile)
	if err != nil {
		return err
	}

	o.cfg = effectiveConfig(*fileCfg, env, cmd.Flags(), o)
	o.log = logging.New(cmd.ErrOrStderr(), o.cfg.LogLevel)
	o.log.Debug().Str("config", path).Str("location", o.cfg.Location).Msg("configuration loaded")

	display.SetTheme(o.prefs().DarkTheme())
	return nil
}

func (o *options) resolveConfigPath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	path, err := config.Path()
	if err != nil {
		return "", err
	}
	o.configPath = path
	return path, nil
}

// prefs returns the preference store next to the config file.
func (o *options) prefs() *prefs.Store {
	return prefs.Open(configDir(o.configPath))
}

func configDir(configPath string) string {
	return filepath.Dir(configPath)
}

// effectiveConfig returns the merged configuration values,
// applying the priority: CLI flags > environment > config file > defaults.
// It uses pflag's Changed to detect whether a flag was explicitly set.
func effectiveConfig(file config.Config, env config.Env, flags *pflag.FlagSet, o *options) config.Config {
	cfg := file
	cfg.ApplyEnv(env)

	if flagWasSet(flags, "location") {
		cfg.Location = o.location
	}
	if flagWasSet(flags, "lat") {
		cfg.Latitude = o.latitude
	}
	if flagWasSet(flags, "lon") {
		cfg.Longitude = o.longitude
	}
	if flagWasSet(flags, "timezone") {
		cfg.Timezone = o.timezone
	}
	if flagWasSet(flags, "api-key") {
		cfg.APIKey = o.apiKey
	}
	if flagWasSet(flags, "time-format") {
		cfg.TimeFormat = o.timeFormat
	}
	if flagWasSet(flags, "log-level") {
		cfg.LogLevel = o.logLevel
	}

	return cfg.WithDefaults()
}

// flagWasSet checks if a flag was explicitly set. cmd.Flags() includes the
// inherited persistent flags once cobra has parsed them.
func flagWasSet(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	return f != nil && f.Changed
}
