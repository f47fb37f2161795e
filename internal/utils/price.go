package utils

import "fmt"

// FormatPrice renders a coffee price as a pound-prefixed two-decimal string,
// e.g. 3.5 -> "£3.50". Listings store the formatted string, not the number.
func FormatPrice(price float64) string {
	return fmt.Sprintf("£%.2f", price)
}
