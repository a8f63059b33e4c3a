package entities

import (
	"errors"
	"fmt"
	"time"
)

type OutcomeState string

const (
	OutcomePublished     OutcomeState = "published"
	OutcomePublishFailed OutcomeState = "publish_failed"
	OutcomePersistFailed OutcomeState = "persist_failed"
)

// DeclarationOutcome is the per-declaration record of one seed run.
// Sequence is the 1-based creation order inside the run.
type DeclarationOutcome struct {
	Sequence       int
	DeclarationID  string
	Persisted      bool
	PersistError   error
	Published      bool
	PublishError   error
	MessageID      string
	SequenceNumber string
}

func (o DeclarationOutcome) State() OutcomeState {
	switch {
	case !o.Persisted:
		return OutcomePersistFailed
	case o.Published:
		return OutcomePublished
	default:
		return OutcomePublishFailed
	}
}

func (o DeclarationOutcome) Err() error {
	if o.PersistError != nil {
		return o.PersistError
	}
	return o.PublishError
}

// SeedRun aggregates everything one orchestrator run attempted.
type SeedRun struct {
	Document          RemittanceDocument
	DocumentPersisted bool
	DocumentError     error
	Declarations      []DeclarationOutcome
	StartedAt         time.Time
	FinishedAt        time.Time
}

func (r SeedRun) PublishedCount() int {
	count := 0
	for _, outcome := range r.Declarations {
		if outcome.State() == OutcomePublished {
			count++
		}
	}
	return count
}

func (r SeedRun) PersistedCount() int {
	count := 0
	for _, outcome := range r.Declarations {
		if outcome.Persisted {
			count++
		}
	}
	return count
}

func (r SeedRun) PersistFailures() []DeclarationOutcome {
	return r.filter(OutcomePersistFailed)
}

func (r SeedRun) PublishFailures() []DeclarationOutcome {
	return r.filter(OutcomePublishFailed)
}

// Succeeded reports a run where the document and every declaration were
// persisted and every message was accepted by the queue.
func (r SeedRun) Succeeded() bool {
	if !r.DocumentPersisted {
		return false
	}
	return r.PublishedCount() == len(r.Declarations)
}

// Err joins the document error and every per-declaration error in creation
// order. Nil when the run succeeded.
func (r SeedRun) Err() error {
	var errs []error
	if r.DocumentError != nil {
		errs = append(errs, fmt.Errorf("remittance document %s: %w", r.Document.ID, r.DocumentError))
	}
	for _, outcome := range r.Declarations {
		if err := outcome.Err(); err != nil {
			errs = append(errs, fmt.Errorf("content declaration #%d %s: %w", outcome.Sequence, outcome.DeclarationID, err))
		}
	}
	return errors.Join(errs...)
}

// Summary renders the run as report lines: one header and one line per
// declaration.
func (r SeedRun) Summary() []string {
	lines := make([]string, 0, len(r.Declarations)+2)
	if !r.DocumentPersisted {
		lines = append(lines, fmt.Sprintf("remittance document %s: persist failed: %v", r.Document.ID, r.DocumentError))
		return lines
	}
	lines = append(lines, fmt.Sprintf("remittance document %s persisted, %d/%d declarations published",
		r.Document.ID, r.PublishedCount(), len(r.Declarations)))
	for _, outcome := range r.Declarations {
		switch outcome.State() {
		case OutcomePublished:
			lines = append(lines, fmt.Sprintf("  [%d] %s published message_id=%s", outcome.Sequence, outcome.DeclarationID, outcome.MessageID))
		case OutcomePublishFailed:
			lines = append(lines, fmt.Sprintf("  [%d] %s persisted, publish failed: %v", outcome.Sequence, outcome.DeclarationID, outcome.PublishError))
		default:
			lines = append(lines, fmt.Sprintf("  [%d] %s persist failed: %v", outcome.Sequence, outcome.DeclarationID, outcome.PersistError))
		}
	}
	return lines
}

func (r SeedRun) filter(state OutcomeState) []DeclarationOutcome {
	var items []DeclarationOutcome
	for _, outcome := range r.Declarations {
		if outcome.State() == state {
			items = append(items, outcome)
		}
	}
	return items
}
