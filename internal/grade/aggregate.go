package grade

import "math"

// Band boundaries on the 0-20 scale. Inclusive at the lower bound of each
// tier: exactly 11.00 is passing, exactly 18.00 is excellent.
const (
	PassingThreshold   = 11.0
	ExcellentThreshold = 18.0
)

// WeightedAverage computes sum(score*weight)/sum(weight) rounded to two
// decimals. A zero weight sum yields 0, not NaN: a student with nothing
// graded simply has no average yet.
func WeightedAverage(scores []AssessmentScore) float64 {
	var sum, weight float64
	for _, s := range scores {
		sum += s.Score * s.Weight
		weight += s.Weight
	}
	if weight == 0 {
		return 0
	}
	return round2(sum / weight)
}

// Summarize rolls per-student weighted averages into course-level stats.
// Passing counts every average >= 11 (excellent included), so failing and
// passing partition the students.
func Summarize(courseID, periodID string, averages []StudentAverage) CourseSummary {
	out := CourseSummary{CourseID: courseID, PeriodID: periodID, StudentCount: len(averages)}
	var total float64
	for _, a := range averages {
		total += a.Average
		switch {
		case a.Average < PassingThreshold:
			out.FailingCount++
		default:
			out.PassingCount++
			if a.Average >= ExcellentThreshold {
				out.ExcellentCount++
			}
		}
	}
	if len(averages) > 0 {
		out.Mean = round2(total / float64(len(averages)))
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
