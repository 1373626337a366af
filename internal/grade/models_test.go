package grade_test

import (
	"encoding/json"
	"testing"

	"github.com/Jackson-sch/sistema-escolar/internal/grade"
)

func TestRowInputScoreDecoding(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"number", `{"student_id":"s1","score":12.5}`, "12.5"},
		{"integer", `{"student_id":"s1","score":20}`, "20"},
		{"string", `{"student_id":"s1","score":"07"}`, "07"},
		{"null", `{"student_id":"s1","score":null}`, ""},
		{"absent", `{"student_id":"s1"}`, ""},
		{"bool carried to row validation", `{"student_id":"s1","score":true}`, "true"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var in grade.RowInput
			if err := json.Unmarshal([]byte(tc.in), &in); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if in.Score != tc.want {
				t.Fatalf("score = %q, want %q", in.Score, tc.want)
			}
			if in.StudentID != "s1" {
				t.Fatalf("student_id lost: %+v", in)
			}
		})
	}
}
