package netmeter

import "fmt"

const (
	kib = 1024.0
	mib = 1024.0 * 1024.0
)

// FormatBytes renders a byte count with binary units: "1.50 MiB",
// "12.00 KiB" or "512 B". A value exactly at a unit boundary stays in the
// smaller unit.
func FormatBytes(v float64) string {
	switch {
	case v > mib:
		return fmt.Sprintf("%.2f MiB", v/mib)
	case v > kib:
		return fmt.Sprintf("%.2f KiB", v/kib)
	default:
		return fmt.Sprintf("%.0f B", v)
	}
}
