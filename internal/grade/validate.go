package grade

import (
	"math"
	"strconv"
	"strings"
)

// ValidateRow checks one candidate grade tuple and returns the normalized
// row or a typed structural failure. Pure, no store access.
func ValidateRow(in RowInput) (Row, *Error) {
	studentID := strings.TrimSpace(in.StudentID)
	if studentID == "" {
		return Row{}, errMissingField("student_id")
	}
	raw := strings.TrimSpace(in.Score)
	if raw == "" {
		return Row{}, errMissingField("score")
	}
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
		return Row{}, errInvalidScore(raw)
	}
	if score < ScoreMin || score > ScoreMax {
		return Row{}, errOutOfRange(score)
	}
	// Absent comment normalizes to "" so storage never branches on null.
	return Row{StudentID: studentID, Score: score, Comment: in.Comment}, nil
}
