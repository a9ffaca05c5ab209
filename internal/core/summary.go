package core

// UncategorizedLabel groups expense records with an empty category in the
// category breakdown.
const UncategorizedLabel = "Uncategorized"

// CategoryAmount represents an amount aggregated by category name, the
// {label, value} pair handed to the chart.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Summary holds the dashboard totals. Aggregation is always computed over
// the entire unfiltered list, independent of the active view.
type Summary struct {
	TotalIncome   Money
	TotalExpenses Money
	Balance       Money
}

// Summarize computes income and expense totals and the balance.
// An empty list yields all zeros.
func Summarize(list []Transaction) Summary {
	var s Summary
	for _, t := range list {
		switch t.Type {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case Expense:
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpenses)
	return s
}

// ExpensesByCategory sums expense amounts per category, in insertion order
// of each category's first occurrence while scanning the list. Records with
// an empty category fall under UncategorizedLabel.
func ExpensesByCategory(list []Transaction) []CategoryAmount {
	index := map[string]int{}
	var out []CategoryAmount
	for _, t := range list {
		if t.Type != Expense {
			continue
		}
		name := t.Category
		if name == "" {
			name = UncategorizedLabel
		}
		i, ok := index[name]
		if !ok {
			index[name] = len(out)
			out = append(out, CategoryAmount{Name: name})
			i = len(out) - 1
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}
	return out
}
