package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/aurora"
	"github.com/etnz/aurora/dashboard"
	"github.com/etnz/aurora/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// decimalValue is a flag.Value for decimal numbers.
type decimalValue struct{ d *decimal.Decimal }

func (v decimalValue) String() string {
	if v.d == nil {
		return "0"
	}
	return v.d.String()
}

func (v decimalValue) Set(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*v.d = d
	return nil
}

// dateValue is a flag.Value for dates, in any format date.Parse accepts.
type dateValue struct{ d *date.Date }

func (v dateValue) String() string {
	if v.d == nil {
		return ""
	}
	return v.d.String()
}

func (v dateValue) Set(s string) error {
	d, err := date.Parse(s)
	if err != nil {
		return err
	}
	*v.d = d
	return nil
}

// resolveAsset finds an asset by ID, or by ticker when ref is not an ID.
func resolveAsset(ctx context.Context, d *dashboard.Dashboard, ref string) (*aurora.Asset, error) {
	if _, err := uuid.Parse(ref); err == nil {
		return d.Asset(ctx, ref)
	}
	l, err := d.Assets(ctx, aurora.AssetSearch{Search: ref})
	if err != nil {
		return nil, err
	}
	for i := range l.Assets {
		if strings.EqualFold(l.Assets[i].Ticker, ref) {
			return &l.Assets[i], nil
		}
	}
	return nil, fmt.Errorf("no asset with ticker %q", ref)
}
