package core

import (
	"strconv"
	"time"
)

// FormatUSD formats an amount as a US-style currency string, e.g. "$1,234.56".
// Negative amounts (derived balances) render as "-$1,234.56".
func FormatUSD(m Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := cents / 100
	rem := cents % 100
	s := groupThousands(strconv.FormatInt(whole, 10)) + "." + pad2(rem)
	if neg {
		return "-$" + s
	}
	return "$" + s
}

// FormatDate renders an instant as a short en-US calendar date, e.g. "1/2/2006".
func FormatDate(t time.Time) string {
	return t.Format("1/2/2006")
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b []byte
	first := n % 3
	if first > 0 {
		b = append(b, digits[:first]...)
	}
	for i := first; i < n; i += 3 {
		if len(b) > 0 {
			b = append(b, ',')
		}
		b = append(b, digits[i:i+3]...)
	}
	return string(b)
}

func pad2(v int64) string {
	if v < 10 {
		return "0" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}
