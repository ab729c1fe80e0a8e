//go:build unit

package output

import "testing"

func TestFormatUSDGrouping(t *testing.T) {
	got := FormatUSD(1234567.891)
	want := "$1,234,567.89"
	if got != want {
		t.Errorf("FormatUSD(1234567.891) = %q, want %q", got, want)
	}
}

func TestFormatPercentRounding(t *testing.T) {
	got := FormatPercent(0.12345)
	want := "12.3%"
	if got != want {
		t.Errorf("FormatPercent(0.12345) = %q, want %q", got, want)
	}
}
