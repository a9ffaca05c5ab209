package core

import (
	"reflect"
	"testing"
	"time"
)

func tx(id, desc string, cents int64, typ TxType, cat string, day int) Transaction {
	return Transaction{
		ID:          id,
		Description: desc,
		Amount:      Money{Cents: cents},
		Type:        typ,
		Category:    cat,
		Date:        time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
	}
}

func ids(list []Transaction) []string {
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.ID
	}
	return out
}

func TestApplySortByAmount(t *testing.T) {
	list := []Transaction{
		tx("a", "a", 3000, Expense, "X", 1),
		tx("b", "b", 1000, Expense, "X", 2),
		tx("c", "c", 2000, Expense, "X", 3),
	}
	v := View{Type: TypeAll, Key: SortByAmount, Dir: Asc}

	got := Apply(list, v)
	if want := []string{"b", "c", "a"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("asc: got %v, want %v", ids(got), want)
	}

	// Toggling the same key reverses the order.
	got = Apply(list, NextView(v, SortByAmount))
	if want := []string{"a", "c", "b"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("desc: got %v, want %v", ids(got), want)
	}

	// Input list untouched.
	if list[0].ID != "a" || list[1].ID != "b" || list[2].ID != "c" {
		t.Fatalf("input mutated: %v", ids(list))
	}
}

func TestApplySortStability(t *testing.T) {
	// Equal amounts keep their original relative order in both directions.
	list := []Transaction{
		tx("a", "a", 500, Expense, "X", 1),
		tx("b", "b", 500, Expense, "X", 2),
		tx("c", "c", 100, Expense, "X", 3),
		tx("d", "d", 500, Expense, "X", 4),
	}
	asc := Apply(list, View{Type: TypeAll, Key: SortByAmount, Dir: Asc})
	if want := []string{"c", "a", "b", "d"}; !reflect.DeepEqual(ids(asc), want) {
		t.Fatalf("asc: got %v, want %v", ids(asc), want)
	}
	desc := Apply(list, View{Type: TypeAll, Key: SortByAmount, Dir: Desc})
	if want := []string{"a", "b", "d", "c"}; !reflect.DeepEqual(ids(desc), want) {
		t.Fatalf("desc: got %v, want %v", ids(desc), want)
	}
}

func TestApplySortByDateAndStrings(t *testing.T) {
	list := []Transaction{
		tx("a", "Zeta", 100, Income, "B", 3),
		tx("b", "Alpha", 200, Expense, "A", 1),
		tx("c", "Mid", 300, Expense, "C", 2),
	}
	cases := []struct {
		key  SortKey
		want []string
	}{
		{SortByDate, []string{"b", "c", "a"}},
		{SortByDescription, []string{"b", "c", "a"}},
		{SortByCategory, []string{"b", "a", "c"}},
		{SortByType, []string{"b", "c", "a"}}, // expense < income
	}
	for _, tc := range cases {
		got := Apply(list, View{Type: TypeAll, Key: tc.key, Dir: Asc})
		if !reflect.DeepEqual(ids(got), tc.want) {
			t.Errorf("key %s: got %v, want %v", tc.key, ids(got), tc.want)
		}
	}
}

func TestApplyFilters(t *testing.T) {
	list := []Transaction{
		tx("a", "salary", 100000, Income, "Salary", 1),
		tx("b", "food", 2000, Expense, "Food", 2),
		tx("c", "rent", 90000, Expense, "Rent", 3),
		tx("d", "snack", 500, Expense, "Food", 4),
	}

	v := View{Type: TypeExpense, Category: "Food", Key: SortByDate, Dir: Asc}
	got := Apply(list, v)
	if want := []string{"b", "d"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("got %v, want %v", ids(got), want)
	}

	// Filtering is idempotent.
	again := Apply(got, v)
	if !reflect.DeepEqual(ids(again), ids(got)) {
		t.Fatalf("not idempotent: %v vs %v", ids(again), ids(got))
	}

	// Type filter alone.
	got = Apply(list, View{Type: TypeIncome, Key: SortByDate, Dir: Asc})
	if want := []string{"a"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("income only: got %v, want %v", ids(got), want)
	}

	// Empty result is an empty slice, not nil panic territory.
	got = Apply(list, View{Type: TypeIncome, Category: "Food", Key: SortByDate, Dir: Asc})
	if len(got) != 0 {
		t.Fatalf("expected empty, got %v", ids(got))
	}
}

func TestNextView(t *testing.T) {
	v := DefaultView() // date desc
	v = NextView(v, SortByAmount)
	if v.Key != SortByAmount || v.Dir != Asc {
		t.Fatalf("new key should reset to asc, got %+v", v)
	}
	v = NextView(v, SortByAmount)
	if v.Dir != Desc {
		t.Fatalf("same key should toggle to desc, got %+v", v)
	}
	v = NextView(v, SortByAmount)
	if v.Dir != Asc {
		t.Fatalf("same key should toggle back to asc, got %+v", v)
	}
}

func TestViewNormalize(t *testing.T) {
	v := View{Type: "bogus", Key: "nope", Dir: "sideways", Category: "Food"}.Normalize()
	if v.Type != TypeAll || v.Key != SortByDate || v.Dir != Asc || v.Category != "Food" {
		t.Fatalf("got %+v", v)
	}
}

func TestCategoriesFirstSeenOrder(t *testing.T) {
	list := []Transaction{
		tx("a", "x", 100, Expense, "Food", 1),
		tx("b", "x", 100, Expense, "Rent", 2),
		tx("c", "x", 100, Expense, "Food", 3),
		tx("d", "x", 100, Income, "Salary", 4),
		tx("e", "x", 100, Expense, "", 5),
	}
	got := Categories(list)
	if want := []string{"Food", "Rent", "Salary"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if Categories(nil) != nil {
		t.Fatalf("expected nil for empty list")
	}
}
