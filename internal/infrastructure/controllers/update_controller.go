package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/upd/internal/domain/commands"
	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/infrastructure/ui"
)

// UpdateController handles both the root command and "upd update".
type UpdateController struct {
	command commands.Update
}

// NewUpdateController creates a new UpdateController.
func NewUpdateController(command commands.Update) *UpdateController {
	return &UpdateController{command: command}
}

// GetBind returns the Cobra command metadata for the update controller.
func (it *UpdateController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "update [paths...]",
		Short: "Update dependencies (default when no command is given)",
		Long: `Find requirements, pyproject.toml, package.json, Cargo.toml and go.mod files
under the given paths, look up the newest published version of every dependency
and rewrite the version tokens in place.`,
	}
}

// AddFlags registers the update specific flags.
func (it *UpdateController) AddFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Bool("no-cache", false, "Disable version caching")
	flags.Bool("major", false, "Only show/apply major updates")
	flags.Bool("minor", false, "Only show/apply minor updates")
	flags.Bool("patch", false, "Only show/apply patch updates")
	flags.Bool("full-precision", false, "Use full version precision (e.g. 3.1.5 instead of 3.1)")
	flags.BoolP("interactive", "i", false, "Approve each update interactively")
	flags.Bool("lock", false, "Regenerate lock files next to modified manifests")
	flags.IntP("concurrency", "j", commands.DefaultConcurrency, "Number of files processed in parallel")
	flags.String("metrics-file", "", "Write run metrics in Prometheus text format to this file")
}

// Execute runs an update over the given paths.
func (it *UpdateController) Execute(cmd *cobra.Command, args []string) error {
	global, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	settings, err := loadSettings(global.config)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	noCache, _ := flags.GetBool("no-cache")
	major, _ := flags.GetBool("major")
	minor, _ := flags.GetBool("minor")
	patch, _ := flags.GetBool("patch")
	fullPrecision, _ := flags.GetBool("full-precision")
	interactive, _ := flags.GetBool("interactive")
	lock, _ := flags.GetBool("lock")
	concurrency, _ := flags.GetInt("concurrency")
	metricsFile, _ := flags.GetString("metrics-file")

	return it.command.Execute(cmd.Context(), settings, commands.UpdateOptions{
		Paths:         args,
		Langs:         global.langs,
		DryRun:        global.dryRun,
		NoCache:       noCache,
		Verbose:       global.verbose,
		FullPrecision: fullPrecision,
		Interactive:   interactive,
		Check:         global.check,
		Lock:          lock,
		Filter:        entities.UpdateFilter{Major: major, Minor: minor, Patch: patch},
		Concurrency:   concurrency,
		MetricsFile:   metricsFile,
		Output:        cmd.OutOrStdout(),
		Progress:      ui.NewSpinner(cmd.ErrOrStderr()),
	})
}
