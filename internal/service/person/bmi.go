package person

import (
	"fmt"
	"strconv"
	"strings"
)

// ComputeBMI derives body mass index from the weight (kg) and height
// fields as typed on the form. Comma decimals are accepted; heights
// above 3 are read as centimeters. Returns "" when either field is
// missing or unparsable.
func ComputeBMI(weight, height string) string {
	w, errW := parseDecimal(weight)
	h, errH := parseDecimal(height)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return ""
	}
	if h > 3 {
		h = h / 100
	}
	bmi := w / (h * h)
	return strings.Replace(fmt.Sprintf("%.1f", bmi), ".", ",", 1)
}

func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}
