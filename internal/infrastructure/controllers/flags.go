package controllers

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/infrastructure/ui"
)

// AddGlobalFlags registers the flags shared by every subcommand.
func AddGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.BoolP("dry-run", "n", false, "Show what would change without writing")
	flags.Bool("no-color", false, "Disable colored output")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.Bool("check", false, "Exit with status 1 when changes or findings are pending; never writes")
	flags.StringSliceP("lang", "l", nil, "Only process these ecosystems (python, node, rust, go); repeatable")
	flags.StringP("config", "c", "", "Path to config file (default: auto-detect)")
}

type globalFlags struct {
	dryRun  bool
	verbose bool
	check   bool
	langs   []entities.Lang
	config  string
}

// readGlobalFlags parses the shared flags and applies the colour and log level settings.
func readGlobalFlags(cmd *cobra.Command) (globalFlags, error) {
	flags := cmd.Flags()
	dryRun, _ := flags.GetBool("dry-run")
	noColor, _ := flags.GetBool("no-color")
	verbose, _ := flags.GetBool("verbose")
	check, _ := flags.GetBool("check")
	rawLangs, _ := flags.GetStringSlice("lang")
	config, _ := flags.GetString("config")

	ui.Init(noColor)
	if verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	langs := make([]entities.Lang, 0, len(rawLangs))
	for _, raw := range rawLangs {
		lang, err := entities.ParseLang(raw)
		if err != nil {
			return globalFlags{}, err
		}
		langs = append(langs, lang)
	}

	return globalFlags{dryRun: dryRun, verbose: verbose, check: check, langs: langs, config: config}, nil
}

// loadSettings reads the file named by --config, or the nearest config file
// above the working directory.
func loadSettings(path string) (*entities.Settings, error) {
	if path == "" {
		return entities.DiscoverSettings("."), nil
	}
	settings, err := entities.LoadSettings(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return settings, nil
}
