package http

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/shell"
	"fintrack/internal/store"
)

// txRow is one rendered table row.
type txRow struct {
	ID          string
	Description string
	Amount      string
	Type        string
	Category    string
	Date        string
	IsExpense   bool
}

// headerLink drives one sortable column header.
type headerLink struct {
	Label  string
	Query  string
	Active bool
	Desc   bool
}

// tableData feeds the transaction table partial.
type tableData struct {
	Rows       []txRow
	Notice     string
	Headers    []headerLink
	Categories []string
	Type       string
	Category   string
	Sort       string
	Dir        string
}

// categoryRow is one expenses-by-category bar.
type categoryRow struct {
	Name   string
	Amount string
	Width  int
}

// dashboardData feeds the dashboard partial.
type dashboardData struct {
	TotalIncome     string
	TotalExpenses   string
	Balance         string
	BalanceNegative bool
	Rows            []categoryRow
}

// formData feeds the transaction form partial.
type formData struct {
	Draft             core.Draft
	Errors            map[string]string
	ExpenseCategories []string
	IncomeCategories  []string
	Editing           bool
}

// indexData feeds the full page.
type indexData struct {
	Form  formData
	Query string
}

// errorData feeds the full-page error view.
type errorData struct {
	Message string
}

// acquireShell resolves the caller's anonymous handle and returns their
// shell. A failing random source is fatal for the session.
func (s *Server) acquireShell(w http.ResponseWriter, r *http.Request) (*shell.Shell, bool) {
	_, handle, ok := s.acquireHandle(w, r)
	if !ok {
		return nil, false
	}
	return handle, true
}

func (s *Server) acquireHandle(w http.ResponseWriter, r *http.Request) (string, *shell.Shell, bool) {
	handle, _, err := s.identity.Acquire(w, r)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Identity acquisition failed", log.FieldError, err.Error())
		s.renderErrorPage(w, r, "Could not establish a session. Please reload the page.")
		return "", nil, false
	}
	return handle, s.shells.Get(handle), true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	handle, sh, ok := s.acquireHandle(w, r)
	if !ok {
		return
	}

	// The only way out of the error state is a fresh shell.
	if r.URL.Query().Get("reload") == "1" {
		sh = s.shells.Reset(handle)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if sh.State() == shell.StateError {
		s.renderErrorPage(w, r, "The connection to your data was lost.")
		return
	}

	view := ParseViewParams(r.URL.Query())
	data := indexData{
		Form:  s.formView(sh, core.Draft{Type: string(core.Expense)}, nil),
		Query: ViewQuery(view),
	}
	s.renderPage(w, r, "index.html", data)
}

// handleTransactions renders the transaction table partial: the derived
// view of the shell's current snapshot.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	sh, ok := s.acquireShell(w, r)
	if !ok {
		return
	}
	if done := s.gateReady(w, r, sh, "/ui/transactions"); done {
		return
	}

	list := sh.Transactions()
	view := ParseViewParams(r.URL.Query())

	data := tableData{
		Notice:     sh.TakeNotice(),
		Categories: core.Categories(list),
		Type:       string(view.Type),
		Category:   view.Category,
		Sort:       string(view.Key),
		Dir:        string(view.Dir),
	}
	for _, col := range []struct {
		label string
		key   core.SortKey
	}{
		{"Description", core.SortByDescription},
		{"Amount", core.SortByAmount},
		{"Type", core.SortByType},
		{"Category", core.SortByCategory},
		{"Date", core.SortByDate},
	} {
		data.Headers = append(data.Headers, headerLink{
			Label:  col.label,
			Query:  ViewQuery(core.NextView(view, col.key)),
			Active: view.Key == col.key,
			Desc:   view.Key == col.key && view.Dir == core.Desc,
		})
	}
	for _, t := range core.Apply(list, view) {
		data.Rows = append(data.Rows, txRow{
			ID:          t.ID,
			Description: t.Description,
			Amount:      core.FormatUSD(t.Amount),
			Type:        string(t.Type),
			Category:    t.Category,
			Date:        core.FormatDate(t.Date),
			IsExpense:   t.Type == core.Expense,
		})
	}

	s.renderPartial(w, r, "transactions.html", data)
}

// handleDashboard renders the summary partial. Aggregation always runs
// over the unfiltered list; table filters never change the totals.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	handle, sh, ok := s.acquireHandle(w, r)
	if !ok {
		return
	}
	if done := s.gateReady(w, r, sh, "/ui/dashboard"); done {
		return
	}

	key := handle + "#" + strconv.FormatUint(sh.Generation(), 10) + ":" + strconv.FormatUint(sh.Seq(), 10)
	data, found := s.dashboardCache.Get(key)
	if !found {
		list := sh.Transactions()
		summary := core.Summarize(list)
		data = dashboardData{
			TotalIncome:     core.FormatUSD(summary.TotalIncome),
			TotalExpenses:   core.FormatUSD(summary.TotalExpenses),
			Balance:         core.FormatUSD(summary.Balance),
			BalanceNegative: summary.Balance.Cents < 0,
		}
		byCategory := core.ExpensesByCategory(list)
		var maxCents int64
		for _, c := range byCategory {
			if c.Amount.Cents > maxCents {
				maxCents = c.Amount.Cents
			}
		}
		for _, c := range byCategory {
			data.Rows = append(data.Rows, categoryRow{
				Name:   c.Name,
				Amount: core.FormatUSD(c.Amount),
				Width:  barWidth(c.Amount.Cents, maxCents),
			})
		}
		s.dashboardCache.Set(key, data)
	}

	s.renderPartial(w, r, "dashboard.html", data)
}

// handleForm renders the entry form partial, pre-filled when an id is
// given (the edit flow).
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	sh, ok := s.acquireShell(w, r)
	if !ok {
		return
	}

	draft := core.Draft{Type: string(core.Expense)}
	if id := sanitizeInput(r.URL.Query().Get("id")); id != "" {
		for _, t := range sh.Transactions() {
			if t.ID == id {
				draft = draftFromTransaction(t)
				break
			}
		}
	}
	s.renderPartial(w, r, "form.html", s.formView(sh, draft, nil))
}

// handleSubmit covers both create and update; a non-empty hidden id
// selects the edit flow.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	sh, ok := s.acquireShell(w, r)
	if !ok {
		return
	}

	draft := ParseDraft(r.Form)
	if errs := core.ValidateDraft(draft); len(errs) > 0 {
		body, rerr := s.renderToBytes("form.html", s.formView(sh, draft, errs))
		if rerr != nil {
			InternalServerError("Rendering failed").Write(w)
			return
		}
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			Body(body).
			Header("Content-Type", "text/html; charset=utf-8").
			Write(w)
		return
	}

	if draft.Date == "" {
		draft.Date = time.Now().Format("2006-01-02")
	}
	fields, err := draft.Fields()
	if err != nil {
		UnprocessableEntityError("Invalid transaction data").Write(w)
		return
	}

	ctx := r.Context()
	builder := NewHTMXResponse()
	if draft.ID == "" {
		id, cerr := sh.Create(ctx, fields)
		if cerr != nil {
			s.writeStoreError(w, r, cerr)
			return
		}
		builder.TriggerTransactionCreated(id).TriggerSuccessNotification("Transaction added")
	} else {
		if uerr := sh.Update(ctx, draft.ID, fields); uerr != nil {
			s.writeStoreError(w, r, uerr)
			return
		}
		builder.TriggerTransactionUpdated(draft.ID).TriggerSuccessNotification("Transaction updated")
	}

	// Fresh empty form; the table and dashboard refresh off the trigger.
	body, rerr := s.renderToBytes("form.html", s.formView(sh, core.Draft{Type: draft.Type}, nil))
	if rerr != nil {
		InternalServerError("Rendering failed").Write(w)
		return
	}
	builder.
		TriggerRefresh().
		TriggerFormReset().
		Body(body).
		Header("Content-Type", "text/html; charset=utf-8").
		Write(w)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	sh, ok := s.acquireShell(w, r)
	if !ok {
		return
	}

	id := sanitizeInput(r.Form.Get("id"))
	if id == "" {
		BadRequestError("Missing transaction id").Write(w)
		return
	}

	if err := sh.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	NewHTMXResponse().
		TriggerTransactionDeleted(id).
		TriggerRefresh().
		TriggerSuccessNotification("Transaction deleted").
		Write(w)
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		NotFoundError("Transaction not found").
			TriggerErrorNotification("That transaction no longer exists").
			TriggerRefresh().
			Write(w)
	case errors.Is(err, store.ErrStoreClosed):
		InternalServerError("Session lost, please reload the page").Write(w)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Store write failed", log.FieldError, err.Error())
		InternalServerError("The change could not be saved").
			TriggerErrorNotification("The change could not be saved. Please try again.").
			Write(w)
	}
}

// gateReady short-circuits partial rendering while the shell is still
// connecting or has failed. Returns true when a response was written.
func (s *Server) gateReady(w http.ResponseWriter, r *http.Request, sh *shell.Shell, path string) bool {
	switch sh.State() {
	case shell.StateReady:
		return false
	case shell.StateError:
		NewHTMXResponse().
			BodyHTML(`<div class="error">Connection lost. <a href="/?reload=1">Reload</a> to try again.</div>`).
			Write(w)
		return true
	default:
		// Retry shortly; the first snapshot usually lands within
		// milliseconds of the subscription opening.
		query := r.URL.RawQuery
		url := path
		if query != "" {
			url = path + "?" + query
		}
		NewHTMXResponse().
			BodyHTML(`<div class="loading" hx-get="` + url + `" hx-trigger="load delay:250ms" hx-swap="outerHTML">Loading…</div>`).
			Write(w)
		return true
	}
}

func (s *Server) formView(sh *shell.Shell, draft core.Draft, errs map[string]string) formData {
	existing := core.Categories(sh.Transactions())
	return formData{
		Draft:             draft,
		Errors:            errs,
		ExpenseCategories: mergeCategories(defaultExpenseCategories, existing),
		IncomeCategories:  mergeCategories(defaultIncomeCategories, existing),
		Editing:           draft.ID != "",
	}
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err.Error(), "template", name)
	}
}

func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, name string, data any) {
	body, err := s.renderToBytes(name, data)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err.Error(), "template", name)
		InternalServerError("Rendering failed").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

func (s *Server) renderToBytes(name string, data any) ([]byte, error) {
	if s.templates == nil {
		return nil, errors.New("templates not loaded")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) renderErrorPage(w http.ResponseWriter, r *http.Request, message string) {
	w.WriteHeader(http.StatusInternalServerError)
	s.renderPage(w, r, "error.html", errorData{Message: message})
}
