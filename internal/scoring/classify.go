package scoring

// GradeFor maps an overall score to a letter grade. Bands are inclusive on
// their lower bound.
func GradeFor(score int) string {
	switch {
	case score >= 90:
		return GradeAPlus
	case score >= 80:
		return GradeA
	case score >= 70:
		return GradeB
	case score >= 50:
		return GradeC
	case score >= 30:
		return GradeD
	default:
		return GradeF
	}
}

// StatusFor maps an overall score to a lifecycle status. The engine only
// produces hot/warm/qualified/cold; nurturing and disqualified come from
// external workflows.
func StatusFor(score int) string {
	switch {
	case score >= 80:
		return StatusHot
	case score >= 60:
		return StatusWarm
	case score >= 30:
		return StatusQualified
	default:
		return StatusCold
	}
}
