package repositories

import "github.com/rios0rios0/upd/internal/domain/entities"

// PromptRepository asks the user to approve pending updates one at a time.
type PromptRepository interface {
	Ask(index, total int, update entities.PendingUpdate) (entities.Decision, error)
}
