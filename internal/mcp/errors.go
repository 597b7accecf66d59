package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/syncus/internal/crypto"
	"github.com/rpggio/syncus/internal/domain/chapter"
	"github.com/rpggio/syncus/internal/domain/media"
	"github.com/rpggio/syncus/internal/domain/party"
	"github.com/rpggio/syncus/internal/domain/status"
	"github.com/rpggio/syncus/internal/domain/stream"
	"github.com/rpggio/syncus/internal/workspace"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, chapter.ErrChapterNotFound):
		return &APIError{Code: "CHAPTER_NOT_FOUND", Message: "chapter not found", RecoveryHint: "Call get_workspace for current chapter ids"}
	case errors.Is(err, chapter.ErrMilestoneNotFound):
		return &APIError{Code: "MILESTONE_NOT_FOUND", Message: "milestone not found", RecoveryHint: "Call get_chapter for current milestone ids"}
	case errors.Is(err, chapter.ErrMissingNote):
		return &APIError{Code: "NOTE_REQUIRED", Message: "ALTERNATIVE requires a note", RecoveryHint: "Describe the counter-proposal in note"}
	case errors.Is(err, chapter.ErrInvalidTransition):
		return &APIError{Code: "INVALID_TRANSITION", Message: "consent can only be set to AGREED or ALTERNATIVE"}
	case errors.Is(err, chapter.ErrConfirmationRequired):
		return &APIError{Code: "CONFIRMATION_REQUIRED", Message: "deleting a chapter is irreversible", RecoveryHint: "Repeat with confirm=true"}
	case errors.Is(err, crypto.ErrMissingSecret):
		return &APIError{Code: "MISSING_SECRET", Message: "encryption secret is not configured", RecoveryHint: "Set SYNCUS_SECRET and restart"}
	case errors.Is(err, stream.ErrEntryNotFound), errors.Is(err, media.ErrEntryNotFound):
		return &APIError{Code: "ENTRY_NOT_FOUND", Message: "entry not found"}
	case errors.Is(err, stream.ErrEmptyContent):
		return &APIError{Code: "EMPTY_CONTENT", Message: "note text is empty"}
	case errors.Is(err, status.ErrInvalidStatus):
		return &APIError{Code: "INVALID_STATUS", Message: "status must be STEADY, ALONE or SYNC"}
	case errors.Is(err, media.ErrSearchUnavailable):
		return &APIError{Code: "SEARCH_UNAVAILABLE", Message: "media search is not configured"}
	case errors.Is(err, party.ErrInvalidRole):
		return &APIError{Code: "UNKNOWN_PARTY", Message: "no workspace for this caller"}
	case errors.Is(err, workspace.ErrInactive):
		return &APIError{Code: "SESSION_INACTIVE", Message: "workspace session is not active"}
	case errors.Is(err, chapter.ErrInvalidInput), errors.Is(err, stream.ErrInvalidInput),
		errors.Is(err, media.ErrInvalidInput), errors.Is(err, status.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	default:
		return nil
	}
}

// toolError reports err as a tool-level error result.
func toolError(err error) (*sdkmcp.CallToolResult, any, error) {
	apiErr := MapError(err)
	if apiErr == nil {
		apiErr = &APIError{Code: "INTERNAL", Message: err.Error()}
	}
	data, _ := json.Marshal(apiErr)
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

// jsonResult reports v as the tool's JSON text content.
func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}
