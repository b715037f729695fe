package source

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLocalizedPrice converts a localized currency string from the single
// provider into a float. The provider localizes by account region, so both
// "3,45€" and "$3.45" shapes occur, with optional thousands separators
// ("1.234,56€", "$1,234.56").
func ParseLocalizedPrice(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		default:
			return -1 // drop currency symbols, spaces, letters
		}
	}, s)

	if cleaned == "" {
		return 0, fmt.Errorf("no numeric content in price %q", s)
	}

	dot := strings.LastIndex(cleaned, ".")
	comma := strings.LastIndex(cleaned, ",")
	switch {
	case dot >= 0 && comma >= 0:
		// The rightmost separator is the decimal mark, the other one
		// groups thousands.
		if comma > dot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case comma >= 0:
		if strings.Count(cleaned, ",") > 1 {
			// Multiple commas can only be thousands grouping.
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	return price, nil
}
