package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
)

// TerminalPromptRepository asks for approvals on the terminal.
type TerminalPromptRepository struct {
	stdin  io.ReadCloser
	stdout io.WriteCloser
}

var _ repositories.PromptRepository = (*TerminalPromptRepository)(nil)

// NewTerminalPromptRepository prompts on the process standard streams.
func NewTerminalPromptRepository() *TerminalPromptRepository {
	return &TerminalPromptRepository{stdin: os.Stdin, stdout: os.Stdout}
}

// Label renders the question for one pending update, e.g.
// "[1/3] requirements.txt:4: requests 2.28.0 → 2.31.0 (MAJOR)".
func Label(index, total int, update entities.PendingUpdate) string {
	location := update.File + ":"
	if update.Line > 0 {
		location = fmt.Sprintf("%s:%d:", update.File, update.Line)
	}
	major := ""
	if update.IsMajor {
		major = color.New(color.FgYellow, color.Bold).Sprint(" (MAJOR)")
	}
	return fmt.Sprintf(
		"[%d/%d] %s %s %s → %s%s  Apply? [%s]es / [%s]o / [%s]ll / [%s]uit",
		index+1, total,
		color.New(color.FgBlue, color.Underline).Sprint(location),
		color.New(color.Bold).Sprint(update.Package),
		color.New(color.Faint).Sprint(update.OldVersion),
		color.GreenString(update.NewVersion),
		major,
		color.New(color.FgGreen, color.Bold).Sprint("y"),
		color.New(color.FgRed, color.Bold).Sprint("n"),
		color.New(color.FgCyan, color.Bold).Sprint("a"),
		color.New(color.FgYellow, color.Bold).Sprint("q"),
	)
}

// Ask shows one prompt. Interrupts and end of input quit the review; unknown
// answers skip the update.
func (it *TerminalPromptRepository) Ask(index, total int, update entities.PendingUpdate) (entities.Decision, error) {
	//nolint:exhaustruct // promptui defaults are fine for the remaining fields
	p := promptui.Prompt{
		Label:  Label(index, total, update),
		Stdin:  it.stdin,
		Stdout: it.stdout,
	}
	answer, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
			return entities.DecisionQuit, nil
		}
		return entities.DecisionQuit, fmt.Errorf("failed to read answer: %w", err)
	}
	decision, ok := entities.ParseDecision(answer)
	if !ok {
		_, _ = fmt.Fprintln(it.stdout, color.YellowString("Invalid input, skipping..."))
	}
	return decision, nil
}
