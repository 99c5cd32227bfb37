package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Prices are stored in minor currency units (paise) end to end; conversion to
// major units happens only at display boundaries.

func ToMajorUnits(minor int64) float64 {
	return float64(minor) / 100
}

func ToMinorUnits(major float64) int64 {
	return int64(math.Round(major * 100))
}

// FormatPrice renders a single minor-unit amount, e.g. "₹2,500".
func FormatPrice(minor int64) string {
	return "₹" + formatMajor(minor)
}

// FormatPriceRange renders two minor-unit bounds as a display range, e.g.
// "₹2,500 – ₹5,000". Callers must pass minMinor <= maxMinor.
func FormatPriceRange(minMinor, maxMinor int64) string {
	return fmt.Sprintf("₹%s – ₹%s", formatMajor(minMinor), formatMajor(maxMinor))
}

func formatMajor(minor int64) string {
	rupees := minor / 100
	paise := minor % 100
	if paise < 0 {
		paise = -paise
	}
	grouped := groupThousands(rupees)
	if paise == 0 {
		return grouped
	}
	return fmt.Sprintf("%s.%02d", grouped, paise)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return sign + strings.Join(parts, ",")
}
