package generator

import (
	"math"

	"bloomforge/internal/domain"
)

// Marks computes round(base[level] * difficulty * type), never less than 1.
func Marks(level domain.BloomLevel, difficulty domain.Difficulty, qtype domain.QuestionType) int {
	base := level.BaseMarks()
	if base == 0 {
		base = domain.Remember.BaseMarks()
	}
	m := int(math.Round(float64(base) * difficulty.MarksMultiplier() * qtype.MarksMultiplier()))
	if m < 1 {
		return 1
	}
	return m
}
