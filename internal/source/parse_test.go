package source

import "testing"

func TestParseLocalizedPrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"3,45€", 3.45},
		{"€3.45", 3.45},
		{"0,03€", 0.03},
		{"512,30€", 512.30},
		{"1.234,56€", 1234.56},
		{"$1,234.56", 1234.56},
		{"$0.89 USD", 0.89},
		{"5€", 5},
		{"12.50", 12.50},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseLocalizedPrice(tt.raw)
			if err != nil {
				t.Fatalf("ParseLocalizedPrice(%q) failed: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseLocalizedPrice(%q) = %f, want %f", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseLocalizedPriceInvalid(t *testing.T) {
	for _, raw := range []string{"", "n/a", "€", "..,,"} {
		t.Run(raw, func(t *testing.T) {
			if _, err := ParseLocalizedPrice(raw); err == nil {
				t.Errorf("ParseLocalizedPrice(%q) succeeded, want error", raw)
			}
		})
	}
}
