package validate

import "strings"

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

func ScoreInRange(score float64) bool {
	return score >= 0 && score <= 1
}
