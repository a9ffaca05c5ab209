package core

import (
	"sort"
	"strings"
)

const (
	TypeAll     TypeFilter = "all"
	TypeIncome  TypeFilter = "income"
	TypeExpense TypeFilter = "expense"
)

const (
	SortByDescription SortKey = "description"
	SortByAmount      SortKey = "amount"
	SortByType        SortKey = "type"
	SortByCategory    SortKey = "category"
	SortByDate        SortKey = "date"
)

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

type (
	TypeFilter string
	SortKey    string
	SortDir    string

	// View is the filter/sort configuration a list rendering is derived
	// from. The zero value is not meaningful; use DefaultView.
	View struct {
		Type     TypeFilter
		Category string // empty means no category filter
		Key      SortKey
		Dir      SortDir
	}
)

// DefaultView mirrors the store ordering: everything, newest first.
func DefaultView() View {
	return View{Type: TypeAll, Key: SortByDate, Dir: Desc}
}

// Normalize replaces unknown filter/sort values with defaults so that
// arbitrary query strings always yield a deterministic view.
func (v View) Normalize() View {
	switch v.Type {
	case TypeAll, TypeIncome, TypeExpense:
	default:
		v.Type = TypeAll
	}
	switch v.Key {
	case SortByDescription, SortByAmount, SortByType, SortByCategory, SortByDate:
	default:
		v.Key = SortByDate
	}
	switch v.Dir {
	case Asc, Desc:
	default:
		v.Dir = Asc
	}
	return v
}

// NextView returns the view after a click on a sort header: clicking the
// current key toggles asc/desc, selecting a new key resets to ascending.
// Filters are preserved.
func NextView(v View, key SortKey) View {
	if v.Key == key {
		if v.Dir == Asc {
			v.Dir = Desc
		} else {
			v.Dir = Asc
		}
		return v
	}
	v.Key = key
	v.Dir = Asc
	return v
}

// Matches reports whether a transaction passes the view's filters.
func (v View) Matches(t Transaction) bool {
	if v.Type != TypeAll && string(t.Type) != string(v.Type) {
		return false
	}
	if v.Category != "" && t.Category != v.Category {
		return false
	}
	return true
}

// Apply filters and sorts the list for display. The input is never mutated;
// ties keep their original relative order (stable sort).
func Apply(list []Transaction, v View) []Transaction {
	out := make([]Transaction, 0, len(list))
	for _, t := range list {
		if v.Matches(t) {
			out = append(out, t)
		}
	}
	less := lessFunc(v.Key)
	sort.SliceStable(out, func(i, j int) bool {
		if v.Dir == Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFunc(key SortKey) func(a, b Transaction) bool {
	switch key {
	case SortByAmount:
		return func(a, b Transaction) bool { return a.Amount.Cents < b.Amount.Cents }
	case SortByDate:
		return func(a, b Transaction) bool { return a.Date.Before(b.Date) }
	case SortByType:
		return func(a, b Transaction) bool { return a.Type < b.Type }
	case SortByCategory:
		return func(a, b Transaction) bool { return a.Category < b.Category }
	default:
		return func(a, b Transaction) bool { return a.Description < b.Description }
	}
}

// Categories returns the distinct non-empty categories present in the
// unfiltered list, in first-seen order.
func Categories(list []Transaction) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, t := range list {
		c := strings.TrimSpace(t.Category)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
