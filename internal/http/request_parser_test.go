package http

import (
	"net/url"
	"testing"

	"fintrack/internal/core"
)

func TestParseViewParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  core.View
	}{
		{
			name:  "empty query yields default view",
			query: "",
			want:  core.View{Type: core.TypeAll, Key: core.SortByDate, Dir: core.Desc},
		},
		{
			name:  "type filter",
			query: "type=income",
			want:  core.View{Type: core.TypeIncome, Key: core.SortByDate, Dir: core.Desc},
		},
		{
			name:  "category filter",
			query: "category=Food",
			want:  core.View{Type: core.TypeAll, Category: "Food", Key: core.SortByDate, Dir: core.Desc},
		},
		{
			name:  "explicit sort defaults to ascending",
			query: "sort=amount",
			want:  core.View{Type: core.TypeAll, Key: core.SortByAmount, Dir: core.Asc},
		},
		{
			name:  "explicit sort and direction",
			query: "sort=description&dir=desc",
			want:  core.View{Type: core.TypeAll, Key: core.SortByDescription, Dir: core.Desc},
		},
		{
			name:  "garbage values fall back to defaults",
			query: "type=wat&sort=wat&dir=wat",
			want:  core.View{Type: core.TypeAll, Key: core.SortByDate, Dir: core.Asc},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("bad test query: %v", err)
			}
			if got := ParseViewParams(q); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestViewQueryRoundTrip(t *testing.T) {
	views := []core.View{
		core.DefaultView(),
		{Type: core.TypeExpense, Category: "Food", Key: core.SortByAmount, Dir: core.Asc},
		{Type: core.TypeIncome, Key: core.SortByCategory, Dir: core.Desc},
	}
	for _, v := range views {
		q, err := url.ParseQuery(ViewQuery(v))
		if err != nil {
			t.Fatalf("ViewQuery(%+v) produced unparsable query: %v", v, err)
		}
		if got := ParseViewParams(q); got != v {
			t.Errorf("round trip: got %+v, want %+v", got, v)
		}
	}
}

func TestParseDraft(t *testing.T) {
	form := url.Values{
		"id":          {" mem:3 "},
		"description": {"  Coffee\x00"},
		"amount":      {"4.50"},
		"type":        {"expense"},
		"category":    {"Food"},
		"date":        {"2026-08-30"},
	}
	got := ParseDraft(form)
	want := core.Draft{
		ID:          "mem:3",
		Description: "Coffee",
		Amount:      "4.50",
		Type:        "expense",
		Category:    "Food",
		Date:        "2026-08-30",
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  padded  ", "padded"},
		{"with\x00null", "withnull"},
		{"keeps inner  spaces", "keeps inner  spaces"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
