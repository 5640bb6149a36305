package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/upd/internal"
	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/infrastructure/controllers"
)

func buildRootCommand(appContext *internal.AppInternal) *cobra.Command {
	root := appContext.GetRootController()
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "upd [paths...]",
		Short: "A fast dependency updater for Python, Node.js, Rust and Go projects",
		Long: `upd finds dependency manifests, looks up the newest published version of every
package and rewrites only the version tokens, keeping comments and formatting.

Usage modes:
  upd                 Update every manifest under the current directory
  upd -n path/        Show what would change without writing
  upd align           Align versions of the same package across files
  upd audit           Check declared versions against the OSV database`,
		Args:          cobra.ArbitraryArgs,
		Version:       entities.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          root.Execute,
	}
	controllers.AddGlobalFlags(cmd)
	root.AddFlags(cmd)
	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			RunE:  controller.Execute,
		}
		controller.AddFlags(subCmd)
		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContext := injectAppContext()
	cobraRoot := buildRootCommand(appContext)
	addSubcommands(cobraRoot, appContext)

	err := cobraRoot.ExecuteContext(ctx)
	stop()
	switch {
	case err == nil:
	case errors.Is(err, entities.ErrChecksFailed):
		os.Exit(1)
	default:
		logger.Errorf("Error executing 'upd': %s", err)
		os.Exit(1)
	}
}
