package core

import (
	"testing"
)

func TestSummarizeScenario(t *testing.T) {
	list := []Transaction{
		tx("a", "Salary", 100000, Income, "Salary", 1),
		tx("b", "Food", 20000, Expense, "Food", 2),
		tx("c", "Food", 5000, Expense, "Food", 3),
	}
	s := Summarize(list)
	if s.TotalIncome.Cents != 100000 {
		t.Errorf("income = %d", s.TotalIncome.Cents)
	}
	if s.TotalExpenses.Cents != 25000 {
		t.Errorf("expenses = %d", s.TotalExpenses.Cents)
	}
	if s.Balance.Cents != 75000 {
		t.Errorf("balance = %d", s.Balance.Cents)
	}

	by := ExpensesByCategory(list)
	if len(by) != 1 || by[0].Name != "Food" || by[0].Amount.Cents != 25000 {
		t.Fatalf("by category = %+v", by)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalIncome.Cents != 0 || s.TotalExpenses.Cents != 0 || s.Balance.Cents != 0 {
		t.Fatalf("expected zeros, got %+v", s)
	}
	if got := ExpensesByCategory(nil); len(got) != 0 {
		t.Fatalf("expected empty breakdown, got %+v", got)
	}
}

func TestSummaryInvariants(t *testing.T) {
	lists := [][]Transaction{
		nil,
		{tx("a", "a", 1, Income, "A", 1)},
		{
			tx("a", "a", 999, Income, "A", 1),
			tx("b", "b", 501, Expense, "B", 2),
			tx("c", "c", 250, Expense, "", 3),
			tx("d", "d", 13, Expense, "B", 4),
			tx("e", "e", 7, Income, "C", 5),
		},
	}
	for i, list := range lists {
		s := Summarize(list)
		if s.TotalIncome.Sub(s.TotalExpenses) != s.Balance {
			t.Errorf("list %d: income - expenses != balance", i)
		}
		var sum Money
		for _, ca := range ExpensesByCategory(list) {
			sum = sum.Add(ca.Amount)
		}
		if sum != s.TotalExpenses {
			t.Errorf("list %d: category sum %d != total expenses %d", i, sum.Cents, s.TotalExpenses.Cents)
		}
	}
}

func TestExpensesByCategoryInsertionOrder(t *testing.T) {
	list := []Transaction{
		tx("a", "a", 100, Expense, "Rent", 1),
		tx("b", "b", 200, Expense, "Food", 2),
		tx("c", "c", 300, Income, "Salary", 3), // income never appears
		tx("d", "d", 400, Expense, "Rent", 4),
		tx("e", "e", 500, Expense, "", 5), // empty becomes Uncategorized
	}
	got := ExpensesByCategory(list)
	if len(got) != 3 {
		t.Fatalf("len = %d: %+v", len(got), got)
	}
	if got[0].Name != "Rent" || got[0].Amount.Cents != 500 {
		t.Errorf("slot 0 = %+v", got[0])
	}
	if got[1].Name != "Food" || got[1].Amount.Cents != 200 {
		t.Errorf("slot 1 = %+v", got[1])
	}
	if got[2].Name != UncategorizedLabel || got[2].Amount.Cents != 500 {
		t.Errorf("slot 2 = %+v", got[2])
	}
}
