package spectra

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/etnz/aurora"
)

// Transactions returns the transactions matching search.
func (c *Client) Transactions(ctx context.Context, search aurora.TransactionSearch) (*aurora.TransactionList, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, PathTransactions, search.Values(), &raw); err != nil {
		return nil, err
	}
	var list aurora.TransactionList
	if err := decodeList(raw, &list.Transactions, &list); err != nil {
		return nil, err
	}
	if list.Total == 0 {
		list.Total = len(list.Transactions)
	}
	return &list, nil
}

// Transaction returns a transaction by id.
func (c *Client) Transaction(ctx context.Context, id string) (*aurora.Transaction, error) {
	var t aurora.Transaction
	if err := c.Get(ctx, PathTransaction(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTransaction records a transaction. The total is derived from the
// quantity and unit price when not set.
func (c *Client) CreateTransaction(ctx context.Context, t aurora.TransactionCreate) (*aurora.Transaction, error) {
	t.FillTotal()
	var res aurora.Transaction
	if err := c.Post(ctx, PathTransactions, t, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateTransaction applies a partial update to a transaction.
func (c *Client) UpdateTransaction(ctx context.Context, id string, u aurora.TransactionUpdate) (*aurora.Transaction, error) {
	var res aurora.Transaction
	if err := c.Put(ctx, PathTransaction(id), u, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteTransaction removes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: PathTransaction(id)}, nil)
}
