package server

import (
	"encoding/json"
	"io"
	"net/http"

	"tokobuku/internal/api"
	"tokobuku/internal/util"
)

type addCartRequest struct {
	BookID   int64 `json:"book_id" validate:"required"`
	Quantity int   `json:"quantity" validate:"required,gt=0"`
}

// /api/cart
func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":       s.cart.Items(),
		"totalItems": s.cart.TotalItems(),
		"totalPrice": s.cart.TotalPrice(),
	})
}

// handleCartAdd checks the requested quantity against the latest stock
// snapshot before touching the cart. The snapshot may already be stale; the
// server re-checks at checkout.
func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req addCartRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	book, err := s.api.Book(r.Context(), req.BookID)
	if err != nil {
		writeRemoteError(w, err, "failed to load book")
		return
	}
	if req.Quantity > book.Stock {
		writeError(w, http.StatusUnprocessableEntity, "insufficient stock")
		return
	}
	if err := s.cart.Add(book, req.Quantity); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "added",
		"totalItems": s.cart.TotalItems(),
	})
}

// /api/cart/items/{id}
func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	id, ok := pathID(w, r, "/api/cart/items/")
	if !ok {
		return
	}
	s.cart.Remove(id)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "removed",
		"totalItems": s.cart.TotalItems(),
	})
}

// handleCheckout submits the whole cart as one atomic request. Success
// clears the cart and points the UI at the transaction list; failure leaves
// the cart untouched so the user may retry, surfacing the server's message
// verbatim when one was sent.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.checkoutGate.tryAcquire() {
		writeError(w, http.StatusConflict, "checkout already in progress")
		return
	}
	defer s.checkoutGate.release()

	items := s.cart.Items()
	if len(items) == 0 {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}
	payload := make([]api.CheckoutItem, 0, len(items))
	for _, it := range items {
		payload = append(payload, api.CheckoutItem{BookID: it.ID, Quantity: it.Quantity})
	}
	if err := s.api.CreateTransaction(r.Context(), payload); err != nil {
		util.LoggerFromContext(r.Context()).Warn("checkout rejected", "items", len(payload), "err", err)
		writeRemoteError(w, err, "checkout failed, please try again")
		return
	}
	s.cart.Clear()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"redirect": "/transactions",
	})
}
