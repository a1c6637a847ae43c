package server

import (
	"net/http"
	"strconv"
)

// /api/transactions
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = parsed
	}
	txs, totalPages, err := s.api.Transactions(r.Context(), page, s.pageSize)
	if err != nil {
		writeRemoteError(w, err, "failed to load transactions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": txs,
		"meta": map[string]any{
			"page":       page,
			"totalPages": totalPages,
		},
	})
}

// /api/transactions/{id}
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id, ok := pathID(w, r, "/api/transactions/")
	if !ok {
		return
	}
	detail, err := s.api.Transaction(r.Context(), id)
	if err != nil {
		writeRemoteError(w, err, "failed to load transaction")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": detail})
}
