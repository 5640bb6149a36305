package entities

import "strings"

// Decision is the answer to one interactive prompt.
type Decision int

const (
	DecisionYes Decision = iota
	DecisionNo
	DecisionAll
	DecisionQuit
)

// ParseDecision maps user input to a decision. Empty input approves, unknown
// input skips; the second return value is false for unknown input.
func ParseDecision(input string) (Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "y", "yes":
		return DecisionYes, true
	case "n", "no":
		return DecisionNo, true
	case "a", "all":
		return DecisionAll, true
	case "q", "quit":
		return DecisionQuit, true
	default:
		return DecisionNo, false
	}
}

// PendingUpdate is one change waiting for approval.
type PendingUpdate struct {
	File       string
	FileType   FileType
	Line       int
	Package    string
	OldVersion string
	NewVersion string
	IsMajor    bool
	Approved   bool
}

// Rewrite converts the update into an editor request.
func (u PendingUpdate) Rewrite() VersionRewrite {
	return VersionRewrite{Name: u.Package, Line: u.Line, From: u.OldVersion, To: u.NewVersion}
}

// ReviewUpdates asks for a decision on every update in order. All approves the
// current update and every remaining one; Quit rejects the current update and
// every remaining one. The returned slice is a copy with Approved set.
func ReviewUpdates(
	updates []PendingUpdate,
	ask func(index int, update PendingUpdate) (Decision, error),
) ([]PendingUpdate, error) {
	reviewed := make([]PendingUpdate, len(updates))
	copy(reviewed, updates)

	for i := range reviewed {
		decision, err := ask(i, reviewed[i])
		if err != nil {
			return nil, err
		}
		switch decision {
		case DecisionYes:
			reviewed[i].Approved = true
		case DecisionNo:
			reviewed[i].Approved = false
		case DecisionAll:
			for j := i; j < len(reviewed); j++ {
				reviewed[j].Approved = true
			}
			return reviewed, nil
		case DecisionQuit:
			for j := i; j < len(reviewed); j++ {
				reviewed[j].Approved = false
			}
			return reviewed, nil
		}
	}
	return reviewed, nil
}

// ApprovedByFile groups approved updates by file, in first-seen file order.
func ApprovedByFile(updates []PendingUpdate) ([]string, map[string][]VersionRewrite) {
	var order []string
	byFile := make(map[string][]VersionRewrite)
	for _, u := range updates {
		if !u.Approved {
			continue
		}
		if _, seen := byFile[u.File]; !seen {
			order = append(order, u.File)
		}
		byFile[u.File] = append(byFile[u.File], u.Rewrite())
	}
	return order, byFile
}
