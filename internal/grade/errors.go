package grade

import (
	"errors"
	"fmt"
)

// Code classifies a grading failure. Structural and conflict codes travel
// inside batch reports as data; Unauthorized and StoreUnavailable are hard
// failures at the operation boundary.
type Code string

const (
	CodeMissingField       Code = "missing_field"
	CodeInvalidScoreFormat Code = "invalid_score_format"
	CodeOutOfRangeScore    Code = "out_of_range_score"
	CodeUnauthorized       Code = "unauthorized"
	CodeNotFound           Code = "not_found"
	CodeDuplicateKey       Code = "duplicate_key"
	CodeConflictUnresolved Code = "conflict_unresolved"
	CodeStoreUnavailable   Code = "store_unavailable"
)

// Error is a typed grading error. Field is set for structural failures so a
// form can point at the offending input.
type Error struct {
	Code  Code   `json:"code"`
	Field string `json:"field,omitempty"`
	Msg   string `json:"message"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Msg, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Is lets errors.Is match any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func errMissingField(field string) *Error {
	return &Error{Code: CodeMissingField, Field: field, Msg: "required"}
}

func errInvalidScore(raw string) *Error {
	return &Error{Code: CodeInvalidScoreFormat, Field: "score", Msg: fmt.Sprintf("not a number: %q", raw)}
}

func errOutOfRange(v float64) *Error {
	return &Error{Code: CodeOutOfRangeScore, Field: "score", Msg: fmt.Sprintf("%v outside [%v, %v]", v, ScoreMin, ScoreMax)}
}

// Sentinels used with errors.Is across package boundaries.
var (
	ErrUnauthorized       = &Error{Code: CodeUnauthorized, Msg: "actor may not grade this course"}
	ErrNotFound           = &Error{Code: CodeNotFound, Msg: "not found"}
	ErrDuplicateKey       = &Error{Code: CodeDuplicateKey, Msg: "grade already exists for student+assessment"}
	ErrConflictUnresolved = &Error{Code: CodeConflictUnresolved, Msg: "concurrent write could not be resolved"}
	ErrStoreUnavailable   = &Error{Code: CodeStoreUnavailable, Msg: "record store unreachable"}
)

func storeUnavailable(err error) *Error {
	return &Error{Code: CodeStoreUnavailable, Msg: err.Error()}
}

// AsError coerces any error into a typed *Error, defaulting unknown errors
// to the infrastructure code so batch reports never carry untyped failures.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return storeUnavailable(err)
}
