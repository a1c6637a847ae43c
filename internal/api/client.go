// Package api is the typed client for the remote bookstore REST API. All
// application data is derived from it; the client holds no state beyond the
// base URL and the token hook.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tokobuku/internal/util"
	"tokobuku/pkg/domain"
)

// TokenSource supplies the persisted bearer token. An empty token means no
// Authorization header is attached.
type TokenSource interface {
	Load() (string, error)
}

// Client calls the bookstore API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// APIError represents a bookstore API error response. Message carries the
// server's human-readable message verbatim when one was sent.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs a bookstore API client. No request timeout is set;
// the transport default applies.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     tokens,
	}
}

// Login exchanges credentials for an access token and the account profile.
func (c *Client) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp struct {
		Data struct {
			AccessToken string   `json:"access_token"`
			User        wireUser `json:"user"`
		} `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", nil, payload, &resp); err != nil {
		return domain.User{}, "", err
	}
	return resp.Data.User.toDomain(), resp.Data.AccessToken, nil
}

// Register creates an account. It does not authenticate the caller.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	payload := map[string]string{"name": name, "email": email, "password": password}
	return c.doJSON(ctx, http.MethodPost, "/auth/register", nil, payload, nil)
}

// Me returns the account bound to the current token.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var resp struct {
		Data wireUser `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, nil, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.Data.toDomain(), nil
}

// Genres lists all catalog genres.
func (c *Client) Genres(ctx context.Context) ([]domain.Genre, error) {
	var resp struct {
		Data []wireGenre `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/genres", nil, nil, &resp); err != nil {
		return nil, err
	}
	genres := make([]domain.Genre, 0, len(resp.Data))
	for _, g := range resp.Data {
		genres = append(genres, g.toDomain())
	}
	return genres, nil
}

// BooksQuery selects one page of the catalog.
type BooksQuery struct {
	Page      int
	Limit     int
	Sort      string
	Order     string
	Condition string
}

// Books fetches one catalog page and the server-reported total page count.
func (c *Client) Books(ctx context.Context, q BooksQuery) ([]domain.Book, int, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("limit", strconv.Itoa(q.Limit))
	if q.Sort != "" {
		query.Set("sort", q.Sort)
	}
	if q.Order != "" {
		query.Set("order", q.Order)
	}
	if q.Condition != "" {
		query.Set("condition", q.Condition)
	}
	var resp struct {
		Data []wireBook `json:"data"`
		Meta wireMeta   `json:"meta"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/books", query, nil, &resp); err != nil {
		return nil, 0, err
	}
	books := make([]domain.Book, 0, len(resp.Data))
	for _, b := range resp.Data {
		books = append(books, b.toDomain())
	}
	return books, resp.Meta.totalPages(), nil
}

// Book fetches one catalog item by ID.
func (c *Client) Book(ctx context.Context, id int64) (domain.Book, error) {
	var resp struct {
		Data wireBook `json:"data"`
	}
	path := fmt.Sprintf("/books/%d", id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return domain.Book{}, err
	}
	return resp.Data.toDomain(), nil
}

// NewBook is the create-book payload. The wire format is snake_case.
type NewBook struct {
	Title           string  `json:"title"`
	Writer          string  `json:"writer"`
	Publisher       string  `json:"publisher"`
	Price           float64 `json:"price"`
	Stock           int     `json:"stock"`
	GenreID         int64   `json:"genre_id"`
	Condition       string  `json:"condition,omitempty"`
	PublicationYear int     `json:"publication_year,omitempty"`
	ISBN            string  `json:"isbn,omitempty"`
	Description     string  `json:"description,omitempty"`
}

// CreateBook adds a catalog item.
func (c *Client) CreateBook(ctx context.Context, book NewBook) error {
	return c.doJSON(ctx, http.MethodPost, "/books", nil, book, nil)
}

// DeleteBook removes a catalog item.
func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/books/%d", id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Transactions fetches one page of purchase history. The API does not always
// report a page count; it defaults to 1.
func (c *Client) Transactions(ctx context.Context, page, limit int) ([]domain.Transaction, int, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	var resp struct {
		Data []wireTransaction `json:"data"`
		Meta wireMeta          `json:"meta"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/transactions", query, nil, &resp); err != nil {
		return nil, 0, err
	}
	txs := make([]domain.Transaction, 0, len(resp.Data))
	for _, t := range resp.Data {
		txs = append(txs, t.toDomain())
	}
	return txs, resp.Meta.totalPages(), nil
}

// Transaction fetches one transaction with its purchased items.
func (c *Client) Transaction(ctx context.Context, id int64) (domain.TransactionDetail, error) {
	var resp struct {
		Data wireTransactionDetail `json:"data"`
	}
	path := fmt.Sprintf("/transactions/%d", id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return domain.TransactionDetail{}, err
	}
	return resp.Data.toDomain(), nil
}

// CheckoutItem is one cart line of the create-transaction payload.
type CheckoutItem struct {
	BookID   int64 `json:"book_id"`
	Quantity int   `json:"quantity"`
}

// CreateTransaction submits the whole cart as one atomic request. The call
// is not idempotent; callers must gate double-submits themselves.
func (c *Client) CreateTransaction(ctx context.Context, items []CheckoutItem) error {
	payload := map[string]any{"items": items}
	return c.doJSON(ctx, http.MethodPost, "/transactions", nil, payload, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", util.NewID())
	c.addAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	return nil
}

// addAuthHeader attaches the persisted bearer token. Requests made before
// any login carry no Authorization header.
func (c *Client) addAuthHeader(req *http.Request) {
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.Load()
	if err != nil || strings.TrimSpace(token) == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}
