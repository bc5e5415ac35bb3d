package postgrest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jsamuelsen/quotedesk/internal/domain"
)

// PostgREST and PostgreSQL error codes the store reacts to.
const (
	// CodeSingularity is returned when an object response matched zero or several rows.
	CodeSingularity = "PGRST116"

	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeNotNullViolation    = "23502"
	CodeCheckViolation      = "23514"
	CodeInvalidText         = "22P02"
	CodeNumericOutOfRange   = "22003"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4 << 10

// APIError is the error body PostgREST returns for a failed request.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "postgrest status %d", e.Status)

	if e.Code != "" {
		fmt.Fprintf(&b, " code %s", e.Code)
	}

	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}

	if e.Details != "" {
		b.WriteString(" (" + e.Details + ")")
	}

	return b.String()
}

// parseAPIError reads a failed response. Bodies that are not PostgREST JSON
// keep their text as the message.
func parseAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}

	if resp.Body == nil {
		return apiErr
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	if json.Unmarshal(raw, apiErr) != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
	}

	apiErr.Status = resp.StatusCode

	return apiErr
}

// mapAPIError translates a PostgREST failure into a domain error.
//
//	406 or PGRST116 with zero rows -> NotFoundError for entity/key
//	23505, 23503                   -> ConflictError
//	22P02, 22003, 23502, 23514     -> ValidationError
//	anything else                  -> StoreError
func mapAPIError(apiErr *APIError, op, table, entity, key string) error {
	switch {
	case isZeroRows(apiErr):
		return domain.NewNotFoundError(entity, key)
	case apiErr.Code == CodeUniqueViolation || apiErr.Code == CodeForeignKeyViolation:
		return domain.NewConflictError(entity, conflictReason(apiErr))
	case apiErr.Code == CodeInvalidText || apiErr.Code == CodeNumericOutOfRange ||
		apiErr.Code == CodeNotNullViolation || apiErr.Code == CodeCheckViolation:
		return domain.NewValidationErrorWithValue(table, apiErr.Message, apiErr.Details)
	default:
		return domain.NewStoreError(op, table, apiErr)
	}
}

// isZeroRows reports a singular read that found nothing. PGRST116 is also used
// for several rows; its details then name the row count.
func isZeroRows(apiErr *APIError) bool {
	if apiErr.Code == CodeSingularity {
		return apiErr.Details == "" || strings.Contains(apiErr.Details, " 0 rows")
	}

	return apiErr.Code == "" && apiErr.Status == http.StatusNotAcceptable
}

func conflictReason(apiErr *APIError) string {
	if apiErr.Details != "" {
		return apiErr.Details
	}

	if apiErr.Message != "" {
		return apiErr.Message
	}

	return "constraint violation"
}
