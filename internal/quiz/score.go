package quiz

import "github.com/shopspring/decimal"

// Rounding is half away from zero throughout: 12.5 rounds to 13.

// Score counts the correct answers.
func Score(answers []AnswerRecord) int {
	n := 0
	for _, a := range answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

// Percentage returns round(score / total * 100). A zero total yields 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(score) * 100).
		Div(decimal.NewFromInt(int64(total))).
		Round(0).
		IntPart())
}

// Average returns sum/n rounded to two decimal places.
func Average(sum int64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// RoundSeconds rounds a fractional number of seconds to an integer.
func RoundSeconds(v float64) int {
	return int(decimal.NewFromFloat(v).Round(0).IntPart())
}
