package dashboard

import (
	"context"
	"strings"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/query"
)

// Transactions returns the transactions matching search.
func (d *Dashboard) Transactions(ctx context.Context, search aurora.TransactionSearch) (*aurora.TransactionList, error) {
	return d.transactions(ctx, search, transactionPolicy)
}

// RecentTransactions returns the last limit transactions, RecentLimit if 0.
func (d *Dashboard) RecentTransactions(ctx context.Context, limit int) ([]aurora.Transaction, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	list, err := d.transactions(ctx, aurora.TransactionSearch{Limit: limit}, recentPolicy)
	if err != nil {
		return nil, err
	}
	return list.Transactions, nil
}

// AssetTransactions returns the transactions of an asset.
func (d *Dashboard) AssetTransactions(ctx context.Context, assetID string) ([]aurora.Transaction, error) {
	if assetID == "" {
		return nil, errEmptyID
	}
	list, err := d.transactions(ctx, aurora.TransactionSearch{AssetID: assetID}, transactionPolicy)
	if err != nil {
		return nil, err
	}
	return list.Transactions, nil
}

func (d *Dashboard) transactions(ctx context.Context, search aurora.TransactionSearch, p query.Policy) (*aurora.TransactionList, error) {
	key := txLists.With(search.Values().Encode())
	return query.Fetch(ctx, d.cache, key, p, func(ctx context.Context) (*aurora.TransactionList, error) {
		return d.api.Transactions(ctx, search)
	})
}

// Transaction returns a transaction by id.
func (d *Dashboard) Transaction(ctx context.Context, id string) (*aurora.Transaction, error) {
	if id == "" {
		return nil, errEmptyID
	}
	return query.Fetch(ctx, d.cache, txDetails.With(id), historicalPolicy, func(ctx context.Context) (*aurora.Transaction, error) {
		return d.api.Transaction(ctx, id)
	})
}

// CreateTransaction validates and records a transaction.
func (d *Dashboard) CreateTransaction(ctx context.Context, t aurora.TransactionCreate) (*aurora.Transaction, error) {
	t.Currency = strings.ToUpper(t.Currency)
	t.FillTotal()
	if err := aurora.Validate(t); err != nil {
		return nil, err
	}
	res, err := d.api.CreateTransaction(ctx, t)
	if err != nil {
		return nil, err
	}
	d.cache.Invalidate(txLists)
	d.cache.Invalidate(portfolioKey)
	if err := query.Set(d.cache, txDetails.With(res.ID), res); err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateTransaction validates and applies a partial update.
func (d *Dashboard) UpdateTransaction(ctx context.Context, id string, u aurora.TransactionUpdate) (*aurora.Transaction, error) {
	if id == "" {
		return nil, errEmptyID
	}
	if err := aurora.Validate(u); err != nil {
		return nil, err
	}
	res, err := d.api.UpdateTransaction(ctx, id, u)
	if err != nil {
		return nil, err
	}
	if err := query.Set(d.cache, txDetails.With(id), res); err != nil {
		return nil, err
	}
	d.cache.Invalidate(txLists)
	d.cache.Invalidate(portfolioKey)
	return res, nil
}

// DeleteTransaction removes a transaction.
func (d *Dashboard) DeleteTransaction(ctx context.Context, id string) error {
	if id == "" {
		return errEmptyID
	}
	if err := d.api.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	d.cache.Remove(txDetails.With(id))
	d.cache.Invalidate(txLists)
	d.cache.Invalidate(portfolioKey)
	return nil
}
