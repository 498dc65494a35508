package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/ai-startup-tracker/tracker/internal/errors"
	"github.com/ai-startup-tracker/tracker/internal/store"
)

const (
	TicketSuggest    = "suggest"
	TicketCorrection = "correction"
	TicketFeedback   = "feedback"

	verifySubject = "User flagged for review"
	verifyDetails = "User reported this company may have incorrect info. Please verify and fix all fields."
)

// SuggestRequest is the body of POST /suggest. Name/Notes are accepted as
// aliases of Subject/Details for correction and feedback tickets.
type SuggestRequest struct {
	Type        string      `json:"type"`
	Name        string      `json:"name"`
	Website     string      `json:"website"`
	Notes       string      `json:"notes"`
	Subject     string      `json:"subject"`
	Details     string      `json:"details"`
	StartupName string      `json:"startup_name"`
	StartupID   StartupID `json:"startup_id"`
}

type VerifyRequest struct {
	StartupID   StartupID `json:"startup_id"`
	StartupName string    `json:"startup_name"`
}

// StartupID is sent either as a JSON number or as a string. null and ""
// decode to the empty id; other literals are kept raw and fail parsing.
type StartupID string

func (id *StartupID) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null":
		*id = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = StartupID(strings.TrimSpace(s))
	default:
		*id = StartupID(raw)
	}
	return nil
}

// TicketResult is the response of the write endpoints. Exists and Duplicate
// are soft conflicts, not errors.
type TicketResult struct {
	Success   bool   `json:"success,omitempty"`
	Exists    bool   `json:"exists,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message"`
}

type TicketService struct {
	store *store.Store
}

func NewTicketService(s *store.Store) *TicketService {
	return &TicketService{store: s}
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// parseStartupID returns nil, true for an empty id.
func parseStartupID(n StartupID) (*int64, bool) {
	raw := strings.TrimSpace(string(n))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return nil, false
	}
	return &id, true
}

func (s *TicketService) Submit(ctx context.Context, req SuggestRequest) (*TicketResult, error) {
	typ := strings.ToLower(strings.TrimSpace(req.Type))
	if typ == "" {
		typ = TicketSuggest
	}
	switch typ {
	case TicketSuggest:
		return s.suggest(ctx, req)
	case TicketCorrection, TicketFeedback:
		return s.ticket(ctx, typ, req)
	}
	return nil, apperrors.NewInvalidRequest("Invalid ticket type")
}

func (s *TicketService) suggest(ctx context.Context, req SuggestRequest) (*TicketResult, error) {
	name := strings.TrimSpace(req.Name)
	if len([]rune(name)) < 2 {
		return nil, apperrors.NewInvalidRequest("Company name is required")
	}

	existing, err := s.store.FindStartupByName(ctx, name)
	if err != nil {
		return nil, apperrors.NewInternal("Failed to submit suggestion", err)
	}
	if existing != nil {
		return &TicketResult{Exists: true, Message: fmt.Sprintf("%s is already in our database!", existing.Name)}, nil
	}

	dup, err := s.store.HasPendingSuggestion(ctx, name)
	if err != nil {
		return nil, apperrors.NewInternal("Failed to submit suggestion", err)
	}
	if dup {
		return &TicketResult{Duplicate: true, Message: "This company has already been suggested. We'll review it soon!"}, nil
	}

	sg := store.Suggestion{Name: name, Website: optional(req.Website), Notes: optional(req.Notes)}
	if err := s.store.InsertSuggestion(ctx, sg); err != nil {
		return nil, apperrors.NewInternal("Failed to submit suggestion", err)
	}
	log.Info().Str("name", name).Msg("startup suggested")
	return &TicketResult{Success: true, Message: "Thank you! We'll review and add this company soon."}, nil
}

func (s *TicketService) ticket(ctx context.Context, typ string, req SuggestRequest) (*TicketResult, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = strings.TrimSpace(req.Name)
	}
	details := strings.TrimSpace(req.Details)
	if details == "" {
		details = strings.TrimSpace(req.Notes)
	}
	if subject == "" || details == "" {
		return nil, apperrors.NewInvalidRequest("Subject and details are required")
	}
	startupID, ok := parseStartupID(req.StartupID)
	if !ok {
		return nil, apperrors.NewInvalidRequest("Invalid startup_id")
	}

	t := store.Ticket{
		Type:        typ,
		StartupName: optional(req.StartupName),
		StartupID:   startupID,
		Subject:     subject,
		Details:     details,
		Website:     optional(req.Website),
	}
	if err := s.store.InsertTicket(ctx, t); err != nil {
		return nil, apperrors.NewInternal("Failed to submit", err)
	}
	log.Info().Str("type", typ).Str("subject", subject).Msg("ticket submitted")
	return &TicketResult{Success: true, Message: "Thanks for your feedback! We'll review it shortly."}, nil
}

// Verify flags a startup for manual review.
func (s *TicketService) Verify(ctx context.Context, req VerifyRequest) (*TicketResult, error) {
	id, ok := parseStartupID(req.StartupID)
	if !ok || id == nil {
		return nil, apperrors.NewInvalidRequest("Missing startup_id")
	}
	t := store.Ticket{
		Type:        TicketCorrection,
		StartupName: optional(req.StartupName),
		StartupID:   id,
		Subject:     verifySubject,
		Details:     verifyDetails,
	}
	if err := s.store.InsertTicket(ctx, t); err != nil {
		return nil, apperrors.NewInternal("Failed to submit", err)
	}
	log.Info().Int64("startup_id", *id).Msg("startup flagged for review")
	return &TicketResult{Success: true, Message: "Flagged for review! We'll verify and update this company's info."}, nil
}
