package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/upd/internal/domain/commands"
	"github.com/rios0rios0/upd/internal/domain/entities"
)

// CleanCacheController handles "upd clean-cache".
type CleanCacheController struct {
	command commands.CleanCache
}

// NewCleanCacheController creates a new CleanCacheController.
func NewCleanCacheController(command commands.CleanCache) *CleanCacheController {
	return &CleanCacheController{command: command}
}

func (it *CleanCacheController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "clean-cache",
		Short: "Clear the version cache",
	}
}

func (it *CleanCacheController) AddFlags(_ *cobra.Command) {}

func (it *CleanCacheController) Execute(cmd *cobra.Command, _ []string) error {
	if _, err := readGlobalFlags(cmd); err != nil {
		return err
	}
	return it.command.Execute(cmd.OutOrStdout())
}
