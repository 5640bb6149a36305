package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/upd/internal/domain/commands"
	"github.com/rios0rios0/upd/internal/domain/entities"
)

// VersionController handles "upd version".
type VersionController struct {
	command commands.Version
}

// NewVersionController creates a new VersionController.
func NewVersionController(command commands.Version) *VersionController {
	return &VersionController{command: command}
}

func (it *VersionController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "version",
		Short: "Show version information",
	}
}

func (it *VersionController) AddFlags(_ *cobra.Command) {}

func (it *VersionController) Execute(cmd *cobra.Command, _ []string) error {
	it.command.Execute(cmd.OutOrStdout())
	return nil
}
