// Package server is the view layer: JSON endpoints for the local UI, backed
// by the session, cart, and catalog state containers. Every remote failure
// degrades to an inline error message; nothing here crashes a view.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"

	"tokobuku/internal/api"
	"tokobuku/internal/cart"
	"tokobuku/internal/catalog"
	"tokobuku/internal/ratelimit"
	"tokobuku/internal/session"
	"tokobuku/internal/util"
)

// Config wires required dependencies for the HTTP server. AuthLimiter is
// optional; when set, repeated login/register attempts per client IP are
// throttled.
type Config struct {
	Session     *session.Manager
	Cart        *cart.Cart
	Catalog     *catalog.Browser
	API         *api.Client
	PageSize    int
	AuthLimiter *ratelimit.FixedWindowLimiter
}

// Server exposes the local UI endpoints.
type Server struct {
	session  *session.Manager
	cart     *cart.Cart
	catalog  *catalog.Browser
	api      *api.Client
	pageSize int
	mux      *http.ServeMux
	validate *validator.Validate
	limiter  *ratelimit.FixedWindowLimiter

	loginGate    gate
	registerGate gate
	checkoutGate gate
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.Session == nil || cfg.Cart == nil || cfg.Catalog == nil || cfg.API == nil {
		return nil, errors.New("server: session, cart, catalog, and api are required")
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	// report wire field names in validation messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	s := &Server{
		session:  cfg.Session,
		cart:     cfg.Cart,
		catalog:  cfg.Catalog,
		api:      cfg.API,
		pageSize: pageSize,
		mux:      http.NewServeMux(),
		validate: validate,
		limiter:  cfg.AuthLimiter,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestLog("tokobuku",
		util.WithRequestID(
			util.WithSecurityHeaders(
				util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/login", s.handleLoginEntry)

	// auth
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/register", s.handleRegister)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout)
	s.mux.HandleFunc("/api/auth/session", s.handleSession)

	// catalog, cart, transactions (session required)
	s.mux.Handle("/api/genres", s.protected(s.handleGenres))
	s.mux.Handle("/api/books", s.protected(s.handleBooks))
	s.mux.Handle("/api/books/", s.protected(s.handleBookByID))
	s.mux.Handle("/api/cart", s.protected(s.handleCart))
	s.mux.Handle("/api/cart/items", s.protected(s.handleCartAdd))
	s.mux.Handle("/api/cart/items/", s.protected(s.handleCartRemove))
	s.mux.Handle("/api/checkout", s.protected(s.handleCheckout))
	s.mux.Handle("/api/transactions", s.protected(s.handleTransactions))
	s.mux.Handle("/api/transactions/", s.protected(s.handleTransactionByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLoginEntry is the navigation target for unauthenticated redirects.
func (s *Server) handleLoginEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"page": "login"})
}

// gate allows a single in-flight submission per form. This is advisory
// debouncing of double-submits, not a lock the remote server knows about.
type gate struct {
	busy atomic.Bool
}

func (g *gate) tryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *gate) release() {
	g.busy.Store(false)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeRemoteError surfaces the server's message verbatim when one was sent,
// else the fallback. Transport failures map to 502.
func writeRemoteError(w http.ResponseWriter, err error, fallback string) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		writeError(w, apiErr.Status, msg)
		return
	}
	writeError(w, http.StatusBadGateway, fallback)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// validationMessage flattens the first field error into a readable message.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		case "email":
			return fmt.Sprintf("%s must be a valid email address", fe.Field())
		case "min":
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		case "gt":
			return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
		case "gte":
			return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		default:
			return fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	return "invalid input"
}
