package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-clock/internal/config"
	"github.com/smokyabdulrahman/prayer-clock/internal/logging"
)

// preRunPathOnly replaces the root hook for commands that manage the
// config file itself, so that a broken file can still be shown or reset.
func preRunPathOnly(opts *options) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if _, err := opts.resolveConfigPath(); err != nil {
			return err
		}
		opts.log = logging.New(cmd.ErrOrStderr(), opts.logLevel)
		return nil
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "config",
		Short:             "Show or modify configuration",
		Long:              "Display current configuration, or use subcommands to modify it.\nWhen run without subcommands, shows the current configuration.",
		PersistentPreRunE: preRunPathOnly(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, opts)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\nExamples:\n  prayer-clock config set location dhaka\n  prayer-clock config set api_key <your RapidAPI key>\n  prayer-clock config set time_format 24h\n  prayer-clock config set cache_url redis://localhost:6379/0",
			strings.Join(config.ValidKeys, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, opts, args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset config to defaults",
		Long:  "Delete the config file and restore all settings to defaults.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ResetAt(opts.configPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), opts.configPath)
			return nil
		},
	})

	return cmd
}

// runConfigShow displays the stored configuration, with defaults for
// unset keys.
func runConfigShow(cmd *cobra.Command, opts *options) error {
	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		return err
	}
	defaults := config.Defaults()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "  Configuration (%s)\n\n", opts.configPath)

	for _, key := range config.ValidKeys {
		val, _ := cfg.Get(key)
		shown := val
		switch {
		case key == "api_key" && val != "":
			shown = maskSecret(val)
		case val == "":
			if def, _ := defaults.Get(key); def != "" {
				shown = fmt.Sprintf("(default: %s)", def)
			} else {
				shown = "(not set)"
			}
		}
		fmt.Fprintf(out, "  %-15s %s\n", key, shown)
	}
	return nil
}

// runConfigSet sets a config key to the given value.
func runConfigSet(cmd *cobra.Command, opts *options, key, value string) error {
	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := cfg.SaveTo(opts.configPath); err != nil {
		return err
	}

	shown, _ := cfg.Get(key)
	if key == "api_key" {
		shown = maskSecret(shown)
	}
	opts.log.Debug().Str("key", key).Str("path", opts.configPath).Msg("config updated")
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, shown)
	return nil
}

// maskSecret keeps the last four characters of s.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

func newThemeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:               "theme [dark|light|toggle]",
		Short:             "Show or change the color theme",
		Long:              "Without an argument, print the stored theme. The watch screen follows changes made here while it runs.",
		Args:              cobra.MaximumNArgs(1),
		ValidArgs:         []string{"dark", "light", "toggle"},
		PersistentPreRunE: preRunPathOnly(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.prefs()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				fmt.Fprintln(out, themeName(store.DarkTheme()))
				return nil
			}

			var (
				dark bool
				err  error
			)
			switch args[0] {
			case "dark":
				dark, err = true, store.SetDarkTheme(true)
			case "light":
				dark, err = false, store.SetDarkTheme(false)
			case "toggle":
				dark, err = store.ToggleDarkTheme()
			default:
				return fmt.Errorf("unknown theme %q: want dark, light or toggle", args[0])
			}
			if err != nil {
				return err
			}
			opts.log.Debug().Str("path", store.Path()).Bool("dark", dark).Msg("theme saved")
			fmt.Fprintf(out, "Theme set to %s.\n", themeName(dark))
			return nil
		},
	}
}

func themeName(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}
