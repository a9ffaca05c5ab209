package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

// defaultExpenseCategories seed the category datalist for expense
// entries; the user's own categories are merged in. Suggestions only,
// any category string is accepted.
var defaultExpenseCategories = []string{
	"Food", "Rent", "Utilities", "Transport", "Entertainment", "Health", "Shopping",
}

// defaultIncomeCategories seed the category datalist for income entries.
var defaultIncomeCategories = []string{
	"Salary", "Freelance", "Investments", "Gifts",
}

// mergeCategories appends the user's distinct categories to the
// defaults, keeping first-seen order and dropping duplicates.
func mergeCategories(defaults, existing []string) []string {
	seen := make(map[string]struct{}, len(defaults))
	out := make([]string, 0, len(defaults)+len(existing))
	for _, c := range defaults {
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, c := range existing {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// barWidth converts a category amount to a rounded percent of the
// largest one, clamped so small values stay visible.
func barWidth(cents, maxCents int64) int {
	if maxCents <= 0 || cents <= 0 {
		return 0
	}
	width := int((cents*100 + maxCents/2) / maxCents)
	if width > 0 && width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}

// draftFromTransaction pre-fills the form for the edit flow.
func draftFromTransaction(t core.Transaction) core.Draft {
	return core.Draft{
		ID:          t.ID,
		Description: t.Description,
		Amount:      t.Amount.Decimal(),
		Type:        string(t.Type),
		Category:    t.Category,
		Date:        t.Date.Format("2006-01-02"),
	}
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
