package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

type (
	// TxType encodes the direction of a transaction. The amount itself is
	// always positive; the sign is carried here.
	TxType string

	// Transaction is the sole persisted entity: one income or expense
	// record owned by a single user scope. ID is assigned by the store on
	// creation and never changes afterwards.
	Transaction struct {
		ID          string    `json:"id"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Type        TxType    `json:"type"`
		Category    string    `json:"category"`
		Date        time.Time `json:"date"`
	}

	// Fields holds the mutable fields of a transaction, i.e. everything
	// except the store-assigned ID. Create takes Fields; Update replaces
	// all of them at once.
	Fields struct {
		Description string
		Amount      Money
		Type        TxType
		Category    string
		Date        time.Time
	}

	// Draft is an in-progress, not-yet-persisted transaction exactly as it
	// arrives from the form: raw strings, no coercion. A Draft with a
	// non-empty ID selects the edit flow.
	Draft struct {
		ID          string
		Description string
		Amount      string
		Type        string
		Category    string
		Date        string // YYYY-MM-DD
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidDate   = errors.New("invalid date")
)

// Validation messages surfaced inline per field.
const (
	MsgDescriptionRequired = "Description is required"
	MsgAmountPositive      = "Amount must be a positive number"
	MsgCategoryRequired    = "Category is required"
)

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

// ValidateDraft checks a draft for submission. It returns a mapping of
// field name to error message; an empty map means the draft is acceptable.
// Pure and deterministic, no side effects.
func ValidateDraft(d Draft) map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(d.Description) == "" {
		errs["description"] = MsgDescriptionRequired
	}
	if _, err := ParseDecimalToCents(d.Amount); err != nil {
		errs["amount"] = MsgAmountPositive
	}
	if strings.TrimSpace(d.Category) == "" {
		errs["category"] = MsgCategoryRequired
	}
	return errs
}

// Fields converts a validated draft into typed fields. Callers are expected
// to run ValidateDraft first; parse failures here indicate a malformed
// request rather than a user mistake.
func (d Draft) Fields() (Fields, error) {
	cents, err := ParseDecimalToCents(d.Amount)
	if err != nil {
		return Fields{}, ErrInvalidAmount
	}
	typ := TxType(strings.TrimSpace(d.Type))
	if !typ.Valid() {
		return Fields{}, ErrInvalidType
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(d.Date))
	if err != nil {
		return Fields{}, ErrInvalidDate
	}
	return Fields{
		Description: strings.TrimSpace(d.Description),
		Amount:      Money{Cents: cents},
		Type:        typ,
		Category:    strings.TrimSpace(d.Category),
		Date:        date.UTC(),
	}, nil
}

// Validate checks invariants on typed fields before they reach a store.
func (f Fields) Validate() error {
	if strings.TrimSpace(f.Description) == "" {
		return errors.New("empty description")
	}
	if f.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if !f.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(f.Category) == "" {
		return errors.New("empty category")
	}
	if f.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Fields returns the mutable fields of a persisted transaction, used to
// pre-fill the edit form.
func (t Transaction) Fields() Fields {
	return Fields{
		Description: t.Description,
		Amount:      t.Amount,
		Type:        t.Type,
		Category:    t.Category,
		Date:        t.Date,
	}
}

// Transaction builds a persisted record from fields and a store-assigned id.
func (f Fields) Transaction(id string) Transaction {
	return Transaction{
		ID:          id,
		Description: f.Description,
		Amount:      f.Amount,
		Type:        f.Type,
		Category:    f.Category,
		Date:        f.Date,
	}
}
