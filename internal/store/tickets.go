package store

import (
	"context"
	"fmt"
)

// HasPendingSuggestion reports whether a pending suggestion with the same
// name (case-insensitive) already exists.
func (s *Store) HasPendingSuggestion(ctx context.Context, name string) (bool, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM startup_suggestions WHERE LOWER(name) = LOWER(?) AND status = ?",
		name, TicketStatusPending).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check suggestions: %w", err)
	}
	return n > 0, nil
}

func (s *Store) InsertSuggestion(ctx context.Context, sg Suggestion) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO startup_suggestions (name, website, notes, status) VALUES (?, ?, ?, ?)",
		sg.Name, sg.Website, sg.Notes, TicketStatusPending)
	if err != nil {
		return fmt.Errorf("failed to insert suggestion: %w", err)
	}
	return nil
}

func (s *Store) InsertTicket(ctx context.Context, t Ticket) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO feedback_tickets (type, startup_name, startup_id, subject, details, website, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		t.Type, t.StartupName, t.StartupID, t.Subject, t.Details, t.Website, TicketStatusPending)
	if err != nil {
		return fmt.Errorf("failed to insert ticket: %w", err)
	}
	return nil
}
