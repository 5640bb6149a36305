package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/upd/internal/domain/commands"
	"github.com/rios0rios0/upd/internal/domain/entities"
)

// AlignController handles "upd align".
type AlignController struct {
	command commands.Align
}

// NewAlignController creates a new AlignController.
func NewAlignController(command commands.Align) *AlignController {
	return &AlignController{command: command}
}

func (it *AlignController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "align [paths...]",
		Short: "Align every package to the highest version used across files",
		Long: `Scan all manifests, find packages declared in more than one place and rewrite
the lower versions to the highest one already in use. Constrained declarations
are left alone. No registry is contacted.`,
	}
}

func (it *AlignController) AddFlags(_ *cobra.Command) {}

func (it *AlignController) Execute(cmd *cobra.Command, args []string) error {
	global, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	return it.command.Execute(commands.AlignOptions{
		Paths:   args,
		Langs:   global.langs,
		DryRun:  global.dryRun,
		Check:   global.check,
		Verbose: global.verbose,
		Output:  cmd.OutOrStdout(),
	})
}
