package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/rentalneeds/leadflow-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error or has no friendly mapping.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	case "23514": // check_violation
		return mapCheckConstraint(pqErr)
	case "23505": // unique_violation
		return errors.Conflict("a record with these values already exists")
	case "23502": // not_null_violation
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{col: "must not be empty"})
	case "22P02": // invalid_text_representation, e.g. a malformed UUID
		return errors.BadRequest("malformed identifier")
	default:
		return nil
	}
}

func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "status_valid"):
		return errors.Validation(map[string]string{
			"status": "must be one of: New Lead, Contacted, Documents Verified, Approved, Rejected, On Hold",
		})
	case strings.Contains(constraint, "trust_score_range"):
		return errors.Validation(map[string]string{
			"trust_score": "must be between 0 and 100",
		})
	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}
