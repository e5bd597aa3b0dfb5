package common

import "fmt"

// PluralizePoints returns "point" or "points" for n.
func PluralizePoints(n int64) string {
	if n == 1 || n == -1 {
		return "point"
	}
	return "points"
}

// FormatPointsAmount renders a signed amount.
//
// Examples:
//
//	FormatPointsAmount(100) → "+100 points"
//	FormatPointsAmount(-1)  → "-1 point"
func FormatPointsAmount(amount int64) string {
	if amount >= 0 {
		return fmt.Sprintf("+%d %s", amount, PluralizePoints(amount))
	}
	return fmt.Sprintf("%d %s", amount, PluralizePoints(amount))
}
