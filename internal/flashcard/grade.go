package flashcard

import (
	"fmt"
	"strings"
)

// Grade is the collapsed four-button rating shown to learners.
type Grade string

const (
	GradeAgain Grade = "again"
	GradeHard  Grade = "hard"
	GradeGood  Grade = "good"
	GradeEasy  Grade = "easy"
)

// ParseGrade accepts a grade name in any case.
func ParseGrade(s string) (Grade, error) {
	switch g := Grade(strings.ToLower(strings.TrimSpace(s))); g {
	case GradeAgain, GradeHard, GradeGood, GradeEasy:
		return g, nil
	default:
		return "", fmt.Errorf("unknown grade %q", s)
	}
}

// Quality maps the grade onto the 0-5 recall scale.
func (g Grade) Quality() int {
	switch g {
	case GradeHard:
		return 2
	case GradeGood:
		return 3
	case GradeEasy:
		return 5
	default:
		return 0
	}
}
