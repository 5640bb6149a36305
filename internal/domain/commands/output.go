package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Progress reports that a long-running phase is in progress. The command
// calls Stop before it prints anything else.
type Progress interface {
	Start(message string)
	Stop()
}

type noProgress struct{}

func (noProgress) Start(string) {}
func (noProgress) Stop()        {}

func progressOr(p Progress) Progress {
	if p == nil {
		return noProgress{}
	}
	return p
}

func writerOr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

//nolint:gochecknoglobals // shared palette
var (
	locationStyle = color.New(color.FgBlue, color.Underline)
	actionStyle   = color.New(color.FgGreen)
	nameStyle     = color.New(color.Bold)
	oldStyle      = color.New(color.Faint)
	newStyle      = color.New(color.FgGreen)
	majorStyle    = color.New(color.FgYellow, color.Bold)
	infoStyle     = color.New(color.FgCyan)
	promptStyle   = color.New(color.FgCyan, color.Bold)
	warnStyle     = color.New(color.FgYellow)
	errorStyle    = color.New(color.FgRed)
	countStyle    = color.New(color.FgGreen, color.Bold)
	errCountStyle = color.New(color.FgRed, color.Bold)
)

const checkMark = "✓"

func location(path string, line int) string {
	if line > 0 {
		return fmt.Sprintf("%s:%d:", path, line)
	}
	return path + ":"
}
