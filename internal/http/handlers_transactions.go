package http

import (
	"errors"
	"net/http"
	"strings"

	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/store"
)

var emptyFilter core.FilterOptions

type listResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	Count        int                `json:"count"`
	Revision     uint64             `json:"revision"`
}

func filterFromQuery(r *http.Request) core.FilterOptions {
	q := r.URL.Query()
	return core.FilterOptions{
		Search:   strings.TrimSpace(q.Get("search")),
		Category: strings.TrimSpace(q.Get("category")),
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	list := s.svc.List(filterFromQuery(r))
	if list == nil {
		list = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, listResponse{
		Transactions: list,
		Count:        len(list),
		Revision:     s.svc.Revision(),
	})
}

// readDraft decodes and validates a transaction body. It writes the error
// response itself and reports false when the request cannot proceed.
func readDraft(w http.ResponseWriter, r *http.Request) (core.Draft, bool) {
	var in core.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeDecodeError(w, err)
		return core.Draft{}, false
	}
	in.Title = sanitizeInput(in.Title)
	in.Description = sanitizeInput(in.Description)

	d, errs := in.Draft()
	if len(errs) > 0 {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Transaction rejected",
			applog.FieldOperation, applog.OpValidate,
			applog.FieldErrorType, applog.ErrorTypeValidation,
			"fields", len(errs))
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Errors: errs})
		return core.Draft{}, false
	}
	return d, true
}

func (s *Server) logChange(r *http.Request, op string, t core.Transaction) {
	applog.NewStructuredLogger(applog.FromContext(r.Context())).LogTransactionChanged(r.Context(),
		op, t.ID, t.Type.String(), core.FormatAmount(t.Amount), t.Category, s.svc.Revision())
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	d, ok := readDraft(w, r)
	if !ok {
		return
	}
	t := s.svc.Create(r.Context(), d)
	s.logChange(r, applog.OpCreate, t)

	w.Header().Set("Location", "/api/transactions/"+t.ID)
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, ok := s.svc.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.svc.Get(id); !ok {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	d, ok := readDraft(w, r)
	if !ok {
		return
	}

	t, err := s.svc.Update(r.Context(), id, d)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
			"Transaction update failed", err, applog.ComponentHTTP, applog.OpUpdate, applog.NewFields().WithErrorType(applog.ErrorTypeInternal))
		writeServerError(w, r, "could not update transaction")
		return
	}
	s.logChange(r, applog.OpUpdate, t)
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if s.svc.Delete(r.Context(), id) {
		s.logChange(r, applog.OpDelete, core.Transaction{ID: id})
	}
	w.WriteHeader(http.StatusNoContent)
}
