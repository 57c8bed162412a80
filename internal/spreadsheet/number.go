package spreadsheet

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseNumber reads a possibly formatted numeric cell such as "R$ 1.234,56",
// "12,5" or "99.90". Anything other than digits, separators and a minus sign
// is dropped. When a comma is present it is the decimal separator and periods
// are thousands separators. Unparseable input yields 0.
func ParseNumber(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	t := b.String()
	if strings.Contains(t, ",") {
		t = strings.ReplaceAll(t, ".", "")
		t = strings.ReplaceAll(t, ",", ".")
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseInt(s string) int {
	return int(math.Round(ParseNumber(s)))
}

func parseBool(s string, fallback bool) bool {
	switch normalizeHeader(s) {
	case "":
		return fallback
	case "nao", "n", "false", "0", "inativo", "no":
		return false
	}
	return true
}
