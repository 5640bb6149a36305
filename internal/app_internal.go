package internal

import (
	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/infrastructure/controllers"
)

// AppInternal holds the controllers bound to the CLI.
type AppInternal struct {
	controllers      []entities.Controller
	updateController *controllers.UpdateController
}

// NewAppInternal creates the application root.
func NewAppInternal(
	controllerList *[]entities.Controller,
	updateController *controllers.UpdateController,
) *AppInternal {
	return &AppInternal{controllers: *controllerList, updateController: updateController}
}

// GetControllers returns every subcommand controller.
func (it *AppInternal) GetControllers() []entities.Controller {
	return it.controllers
}

// GetRootController returns the controller run when no subcommand is given.
func (it *AppInternal) GetRootController() entities.Controller {
	return it.updateController
}
