package grade_test

import (
	"testing"

	"github.com/Jackson-sch/sistema-escolar/internal/grade"
)

func TestValidateRow(t *testing.T) {
	cases := []struct {
		name     string
		in       grade.RowInput
		wantCode grade.Code // "" means accepted
		want     float64
	}{
		{name: "ok integer", in: grade.RowInput{StudentID: "s1", Score: "14"}, want: 14},
		{name: "ok decimal", in: grade.RowInput{StudentID: "s1", Score: "13.5"}, want: 13.5},
		{name: "lower bound", in: grade.RowInput{StudentID: "s1", Score: "0"}, want: 0},
		{name: "upper bound", in: grade.RowInput{StudentID: "s1", Score: "20"}, want: 20},
		{name: "whitespace score", in: grade.RowInput{StudentID: "s1", Score: " 12 "}, want: 12},
		{name: "below range", in: grade.RowInput{StudentID: "s1", Score: "-0.01"}, wantCode: grade.CodeOutOfRangeScore},
		{name: "above range", in: grade.RowInput{StudentID: "s1", Score: "20.01"}, wantCode: grade.CodeOutOfRangeScore},
		{name: "not a number", in: grade.RowInput{StudentID: "s1", Score: "doce"}, wantCode: grade.CodeInvalidScoreFormat},
		{name: "missing score", in: grade.RowInput{StudentID: "s1"}, wantCode: grade.CodeMissingField},
		{name: "missing student", in: grade.RowInput{Score: "10"}, wantCode: grade.CodeMissingField},
		{name: "blank student", in: grade.RowInput{StudentID: "  ", Score: "10"}, wantCode: grade.CodeMissingField},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row, err := grade.ValidateRow(tc.in)
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if row.Score != tc.want {
					t.Fatalf("score: want %v, got %v", tc.want, row.Score)
				}
				return
			}
			if err == nil {
				t.Fatalf("want %s, got accepted row %+v", tc.wantCode, row)
			}
			if err.Code != tc.wantCode {
				t.Fatalf("want %s, got %s", tc.wantCode, err.Code)
			}
		})
	}
}

func TestValidateRowNormalizesComment(t *testing.T) {
	row, err := grade.ValidateRow(grade.RowInput{StudentID: "s1", Score: "10"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if row.Comment != "" {
		t.Fatalf("absent comment must normalize to empty string, got %q", row.Comment)
	}

	row, err = grade.ValidateRow(grade.RowInput{StudentID: "s1", Score: "10", Comment: "  tal cual  "})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if row.Comment != "  tal cual  " {
		t.Fatal("present comment must pass through unmodified")
	}
}
