package aurora

import (
	"net/url"
	"strconv"

	"github.com/etnz/aurora/date"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	Buy  TransactionType = "BUY"
	Sell TransactionType = "SELL"
)

// Transaction is a recorded buy or sell of an asset.
type Transaction struct {
	ID           string          `json:"id"`
	AssetID      string          `json:"asset_id"`
	Date         date.Date       `json:"date"`
	Type         TransactionType `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Currency     string          `json:"currency"`
	Commission   decimal.Decimal `json:"commission"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    date.Timestamp  `json:"created_at"`
	UpdatedAt    *date.Timestamp `json:"updated_at,omitempty"`

	// Asset is embedded by the backend on detail and list responses.
	Asset *Asset `json:"asset,omitempty"`
}

// Amount returns the signed cash flow of the transaction: negative for a buy.
func (t Transaction) Amount() Money {
	total := t.TotalAmount.Add(t.Commission)
	if t.Type == Buy {
		total = total.Neg()
	}
	return M(total, t.Currency)
}

// TransactionCreate is the payload to record a transaction.
type TransactionCreate struct {
	AssetID      string          `json:"asset_id" validate:"required"`
	Date         date.Date       `json:"date" validate:"required,not_future"`
	Type         TransactionType `json:"type" validate:"required,oneof=BUY SELL"`
	Quantity     decimal.Decimal `json:"quantity" validate:"gte=0.00000001"`
	PricePerUnit decimal.Decimal `json:"price_per_unit" validate:"gte=0.00000001"`
	TotalAmount  decimal.Decimal `json:"total_amount" validate:"gte=0.01"`
	Currency     string          `json:"currency" validate:"required,len=3"`
	Commission   decimal.Decimal `json:"commission" validate:"gte=0"`
	Notes        string          `json:"notes,omitempty"`
}

// FillTotal computes TotalAmount from quantity and unit price when it is not
// set, as the original entry form does.
func (t *TransactionCreate) FillTotal() {
	if t.TotalAmount.IsZero() {
		t.TotalAmount = t.Quantity.Mul(t.PricePerUnit).Round(8)
	}
}

// TransactionUpdate is a partial update of a transaction.
type TransactionUpdate struct {
	Date         *date.Date       `json:"date,omitempty"`
	Type         *TransactionType `json:"type,omitempty" validate:"omitempty,oneof=BUY SELL"`
	Quantity     *decimal.Decimal `json:"quantity,omitempty" validate:"omitempty,gte=0.00000001"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit,omitempty" validate:"omitempty,gte=0.00000001"`
	TotalAmount  *decimal.Decimal `json:"total_amount,omitempty" validate:"omitempty,gte=0.01"`
	Commission   *decimal.Decimal `json:"commission,omitempty" validate:"omitempty,gte=0"`
	Notes        *string          `json:"notes,omitempty"`
}

// TransactionSearch filters the transaction list.
type TransactionSearch struct {
	AssetID string
	Range   date.Range
	Type    TransactionType
	Limit   int
}

// Values encodes the non-empty filters as query parameters.
func (s TransactionSearch) Values() url.Values {
	v := url.Values{}
	if s.AssetID != "" {
		v.Set("asset_id", s.AssetID)
	}
	if !s.Range.From.IsZero() {
		v.Set("from", s.Range.From.String())
	}
	if !s.Range.To.IsZero() {
		v.Set("to", s.Range.To.String())
	}
	if s.Type != "" {
		v.Set("type", string(s.Type))
	}
	if s.Limit > 0 {
		v.Set("limit", strconv.Itoa(s.Limit))
	}
	return v
}

// TransactionList is the paginated transaction list envelope.
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
}
