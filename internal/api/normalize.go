package api

import (
	"encoding/json"
	"fmt"

	"tokobuku/pkg/domain"
)

// The backend has shipped the same entities with diverging field names
// (stock vs stok vs quantity, snake_case vs camelCase, genre as an object or
// a bare string). All tolerance for that lives here, at the decode boundary;
// everything past this file sees one canonical shape.

type wireUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (u wireUser) toDomain() domain.User {
	return domain.User{ID: u.ID, Email: u.Email, Name: u.Name}
}

type wireGenre struct {
	ID   int64
	Name string
}

// UnmarshalJSON accepts either a {id,name} object or a bare genre name.
func (g *wireGenre) UnmarshalJSON(data []byte) error {
	var obj struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		g.ID = obj.ID
		g.Name = obj.Name
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		g.Name = name
		return nil
	}
	return fmt.Errorf("genre: unsupported JSON shape: %s", data)
}

func (g wireGenre) toDomain() domain.Genre {
	return domain.Genre{ID: g.ID, Name: g.Name}
}

type wireBook struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	Writer             string    `json:"writer"`
	Publisher          string    `json:"publisher"`
	Price              float64   `json:"price"`
	Stock              *int      `json:"stock"`
	Stok               *int      `json:"stok"`
	Quantity           *int      `json:"quantity"`
	Genre              wireGenre `json:"genre"`
	ISBN               string    `json:"isbn"`
	Description        string    `json:"description"`
	PublicationYear    *int      `json:"publication_year"`
	PublicationYearAlt *int      `json:"publicationYear"`
	Condition          string    `json:"condition"`
}

func (b wireBook) toDomain() domain.Book {
	return domain.Book{
		ID:              b.ID,
		Title:           b.Title,
		Writer:          b.Writer,
		Publisher:       b.Publisher,
		Price:           b.Price,
		Stock:           firstInt(b.Stock, b.Stok, b.Quantity),
		Genre:           b.Genre.toDomain(),
		ISBN:            b.ISBN,
		Description:     b.Description,
		PublicationYear: firstInt(b.PublicationYear, b.PublicationYearAlt),
		Condition:       b.Condition,
	}
}

type wireTransaction struct {
	ID               int64    `json:"id"`
	CreatedAt        string   `json:"created_at"`
	CreatedAtAlt     string   `json:"createdAt"`
	TotalQuantity    *int     `json:"total_quantity"`
	TotalQuantityAlt *int     `json:"totalQuantity"`
	TotalPrice       *float64 `json:"total_price"`
	TotalPriceAlt    *float64 `json:"totalPrice"`
}

func (t wireTransaction) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:            t.ID,
		CreatedAt:     firstString(t.CreatedAt, t.CreatedAtAlt),
		TotalQuantity: firstInt(t.TotalQuantity, t.TotalQuantityAlt),
		TotalPrice:    firstFloat(t.TotalPrice, t.TotalPriceAlt),
	}
}

type wireTransactionItem struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type wireTransactionDetail struct {
	wireTransaction
	Items []wireTransactionItem `json:"items"`
}

func (t wireTransactionDetail) toDomain() domain.TransactionDetail {
	items := make([]domain.TransactionItem, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, domain.TransactionItem{
			ID:       it.ID,
			Title:    it.Title,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}
	return domain.TransactionDetail{
		Transaction: t.wireTransaction.toDomain(),
		Items:       items,
	}
}

type wireMeta struct {
	Page          int  `json:"page"`
	Limit         int  `json:"limit"`
	TotalItems    int  `json:"totalItems"`
	TotalPages    *int `json:"totalPages"`
	TotalPagesAlt *int `json:"total_pages"`
}

// totalPages defaults to 1 when the API omits meta entirely, which the
// transactions endpoint has been observed to do.
func (m wireMeta) totalPages() int {
	if n := firstInt(m.TotalPages, m.TotalPagesAlt); n > 0 {
		return n
	}
	return 1
}

func firstInt(vals ...*int) int {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

func firstFloat(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

func firstString(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
