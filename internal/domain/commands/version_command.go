package commands

import (
	"fmt"
	"io"

	"github.com/rios0rios0/upd/internal/domain/entities"
)

// Version is the interface for the version command.
type Version interface {
	Execute(out io.Writer)
}

// VersionCommand prints the release of upd.
type VersionCommand struct{}

// NewVersionCommand creates a new VersionCommand.
func NewVersionCommand() *VersionCommand {
	return &VersionCommand{}
}

func (it *VersionCommand) Execute(out io.Writer) {
	fmt.Fprintf(writerOr(out), "upd version %s\n", entities.Version)
}
