// Package bridge is the client side of the message contracts the agent
// shares with its background collaborator: dropdown reference data,
// application sync-out, and remote answer generation. The collaborator is
// opaque; only the message shapes are part of this repo.
package bridge

import (
	"context"

	"github.com/jonathan/apply-agent/internal/types"
)

// Message type identifiers, one per contract.
const (
	MsgGetDropdownData         = "GET_DROPDOWN_DATA"
	MsgSaveTrackedApplication  = "SAVE_TRACKED_APPLICATION"
	MsgAutoFillGetAnswersBatch = "AUTO_FILL_GET_ANSWERS_BATCH"
	MsgAutoFillGetAnswer       = "AUTO_FILL_GET_ANSWER"
)

// Company is one selectable company in the tracking dropdown.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CV is one selectable CV in the tracking dropdown.
type CV struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DropdownData is the reference data backing the tracking UI.
type DropdownData struct {
	Companies []Company `json:"companies"`
	CVs       []CV      `json:"cvs"`
}

// SaveRequest is the sync-out payload for a tracked application.
type SaveRequest struct {
	Application types.ApplicationRecord `json:"application"`
	Questions   []types.Question        `json:"questions"`
}

// BatchAnswerRequest asks for answers to every question in one call. The
// response array is positionally aligned with Questions.
type BatchAnswerRequest struct {
	UserID         string   `json:"userId"`
	Questions      []string `json:"questions"`
	JobDescription string   `json:"jobDescription"`
}

// SingleAnswerRequest is the per-question fallback.
type SingleAnswerRequest struct {
	UserID         string `json:"userId"`
	Question       string `json:"question"`
	JobDescription string `json:"jobDescription"`
}

// Client is the collaborator-facing interface the orchestrator depends on.
type Client interface {
	DropdownData(ctx context.Context) (DropdownData, error)
	SaveTrackedApplication(ctx context.Context, req SaveRequest) error
	AnswersBatch(ctx context.Context, req BatchAnswerRequest) ([]string, error)
	Answer(ctx context.Context, req SingleAnswerRequest) (string, error)
}
