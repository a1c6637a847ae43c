package domain

// Genre is a catalog category as served by the bookstore API.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Book is a read-only catalog snapshot owned by the remote system. The
// client never mutates it; stock in particular may be stale by the time a
// user acts on it.
type Book struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Writer          string  `json:"writer"`
	Publisher       string  `json:"publisher"`
	Price           float64 `json:"price"`
	Stock           int     `json:"stock"`
	Genre           Genre   `json:"genre"`
	ISBN            string  `json:"isbn,omitempty"`
	Description     string  `json:"description,omitempty"`
	PublicationYear int     `json:"publicationYear,omitempty"`
	Condition       string  `json:"condition,omitempty"`
}

// User is the authenticated account as returned by the auth endpoints.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CartItem is a book the user selected plus the quantity chosen so far.
// At most one CartItem exists per book ID.
type CartItem struct {
	Book
	Quantity int `json:"quantity"`
}

// Subtotal is unit price times quantity.
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Transaction is one row of the purchase history.
// CreatedAt is the server-formatted timestamp, rendered verbatim.
type Transaction struct {
	ID            int64   `json:"id"`
	CreatedAt     string  `json:"createdAt"`
	TotalQuantity int     `json:"totalQuantity"`
	TotalPrice    float64 `json:"totalPrice"`
}

// TransactionItem is one purchased line inside a transaction. Price is the
// unit price at purchase time, not the current catalog price.
type TransactionItem struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// TransactionDetail extends a Transaction with its purchased items.
type TransactionDetail struct {
	Transaction
	Items []TransactionItem `json:"items"`
}
