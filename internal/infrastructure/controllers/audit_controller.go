package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/upd/internal/domain/commands"
	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/infrastructure/ui"
)

// AuditController handles "upd audit".
type AuditController struct {
	command commands.Audit
}

// NewAuditController creates a new AuditController.
func NewAuditController(command commands.Audit) *AuditController {
	return &AuditController{command: command}
}

func (it *AuditController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "audit [paths...]",
		Short: "Check declared dependency versions for known vulnerabilities",
		Long:  `Query the OSV database (https://osv.dev) for every declared package version.`,
	}
}

func (it *AuditController) AddFlags(_ *cobra.Command) {}

func (it *AuditController) Execute(cmd *cobra.Command, args []string) error {
	global, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	return it.command.Execute(cmd.Context(), commands.AuditOptions{
		Paths:    args,
		Langs:    global.langs,
		Check:    global.check,
		Verbose:  global.verbose,
		Output:   cmd.OutOrStdout(),
		Progress: ui.NewSpinner(cmd.ErrOrStderr()),
	})
}
