package grade_test

import (
	"testing"

	"github.com/Jackson-sch/sistema-escolar/internal/grade"
)

func scores(pairs ...[2]float64) []grade.AssessmentScore {
	out := make([]grade.AssessmentScore, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, grade.AssessmentScore{Score: p[0], Weight: p[1]})
	}
	return out
}

func TestWeightedAverage(t *testing.T) {
	// (10*1 + 15*2 + 20*1) / 4 = 15.00
	got := grade.WeightedAverage(scores([2]float64{10, 1}, [2]float64{15, 2}, [2]float64{20, 1}))
	if got != 15.00 {
		t.Fatalf("want 15.00, got %v", got)
	}
}

func TestWeightedAverageRounding(t *testing.T) {
	// (11 + 12 + 14) / 3 = 12.3333... -> 12.33
	got := grade.WeightedAverage(scores([2]float64{11, 1}, [2]float64{12, 1}, [2]float64{14, 1}))
	if got != 12.33 {
		t.Fatalf("want 12.33, got %v", got)
	}
	// (11 + 12 + 15) / 3 = 12.6666... -> 12.67
	got = grade.WeightedAverage(scores([2]float64{11, 1}, [2]float64{12, 1}, [2]float64{15, 1}))
	if got != 12.67 {
		t.Fatalf("want 12.67, got %v", got)
	}
}

func TestWeightedAverageZeroWeight(t *testing.T) {
	if got := grade.WeightedAverage(nil); got != 0 {
		t.Fatalf("empty set: want 0, got %v", got)
	}
	// all-zero weights is a policy zero too, never NaN
	if got := grade.WeightedAverage(scores([2]float64{15, 0}, [2]float64{18, 0})); got != 0 {
		t.Fatalf("zero weights: want 0, got %v", got)
	}
}

func TestSummarizeBandBoundaries(t *testing.T) {
	avgs := []grade.StudentAverage{
		{StudentID: "s1", Average: 10.99}, // failing
		{StudentID: "s2", Average: 11.00}, // exactly passing
		{StudentID: "s3", Average: 17.99}, // passing, not excellent
		{StudentID: "s4", Average: 18.00}, // exactly excellent
		{StudentID: "s5", Average: 20.00}, // top of scale
	}
	sum := grade.Summarize("c1", "p1", avgs)
	if sum.FailingCount != 1 {
		t.Fatalf("failing: want 1, got %d", sum.FailingCount)
	}
	if sum.PassingCount != 4 {
		t.Fatalf("passing: want 4, got %d", sum.PassingCount)
	}
	if sum.ExcellentCount != 2 {
		t.Fatalf("excellent: want 2, got %d", sum.ExcellentCount)
	}
	if sum.StudentCount != 5 {
		t.Fatalf("students: want 5, got %d", sum.StudentCount)
	}
	// mean of 10.99, 11, 17.99, 18, 20 = 77.98/5 = 15.60 (rounded)
	if sum.Mean != 15.6 {
		t.Fatalf("mean: want 15.6, got %v", sum.Mean)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := grade.Summarize("c1", "", nil)
	if sum.Mean != 0 || sum.StudentCount != 0 {
		t.Fatalf("empty summary must be zero-valued: %+v", sum)
	}
}
