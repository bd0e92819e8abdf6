package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, GradeAPlus},
		{90, GradeAPlus},
		{89, GradeA},
		{80, GradeA},
		{79, GradeB},
		{70, GradeB},
		{69, GradeC},
		{50, GradeC},
		{49, GradeD},
		{30, GradeD},
		{29, GradeF},
		{5, GradeF},
		{0, GradeF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.score), "score %d", tt.score)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, StatusHot},
		{80, StatusHot},
		{79, StatusWarm},
		{60, StatusWarm},
		{59, StatusQualified},
		{30, StatusQualified},
		{29, StatusCold},
		{0, StatusCold},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.score), "score %d", tt.score)
	}
}

// Every score in [0,100] must classify to exactly one grade and one status.
func TestClassifiersAreTotal(t *testing.T) {
	grades := map[string]bool{}
	statuses := map[string]bool{}
	for score := 0; score <= 100; score++ {
		grades[GradeFor(score)] = true
		statuses[StatusFor(score)] = true
	}
	assert.Len(t, grades, 6)
	assert.Len(t, statuses, 4)
}
