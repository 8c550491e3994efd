package aurora

import (
	"errors"
	"testing"

	"github.com/etnz/aurora/date"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestValidateAssetCreate(t *testing.T) {
	tests := []struct {
		name  string
		asset AssetCreate
		want  FieldErrors
	}{
		{
			name: "valid",
			asset: AssetCreate{
				Ticker:         "VWCE",
				Name:           "Vanguard FTSE All-World",
				Type:           AssetETF,
				Classification: ClassEquity,
				Currency:       "EUR",
			},
		},
		{
			name:  "empty",
			asset: AssetCreate{},
			want: FieldErrors{
				"ticker":         "is required",
				"name":           "is required",
				"asset_type":     "is required",
				"classification": "is required",
				"currency":       "is required",
			},
		},
		{
			name: "bad values",
			asset: AssetCreate{
				Ticker:         "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
				Name:           "Too long ticker",
				Type:           "WARRANT",
				Classification: "equity",
				Currency:       "EURO",
				AccountID:      "not-a-uuid",
			},
			want: FieldErrors{
				"ticker":         "must be at most 20 characters",
				"asset_type":     "unknown asset type",
				"classification": "unknown classification",
				"currency":       "must be exactly 3 characters",
				"account_id":     "must be a valid UUID",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.asset)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			var got FieldErrors
			if !errors.As(err, &got) {
				t.Fatalf("Validate() error = %v, want FieldErrors", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Validate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateTransactionCreate(t *testing.T) {
	valid := TransactionCreate{
		AssetID:      "2f1c9d3e-4b6a-4c1e-9a7d-0f7e3b2a1c5d",
		Date:         date.Today().Add(-1),
		Type:         Buy,
		Quantity:     decimal.RequireFromString("0.5"),
		PricePerUnit: decimal.RequireFromString("60000"),
		Currency:     "USD",
	}
	valid.FillTotal()
	if !valid.TotalAmount.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("FillTotal() = %v, want 30000", valid.TotalAmount)
	}
	if err := Validate(valid); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}

	bad := valid
	bad.Date = date.Today().Add(2)
	bad.Type = "HOLD"
	bad.Quantity = decimal.Zero
	bad.Commission = decimal.NewFromInt(-1)
	var got FieldErrors
	if !errors.As(Validate(bad), &got) {
		t.Fatal("Validate() expected FieldErrors")
	}
	want := FieldErrors{
		"date":       "cannot be in the future",
		"type":       "must be one of BUY SELL",
		"quantity":   "must be at least 0.00000001",
		"commission": "must be at least 0",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Validate() mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldErrorsMerge(t *testing.T) {
	var f FieldErrors
	f = f.Merge(FieldErrors{"ticker": "already exists"})
	f = f.Merge(FieldErrors{"ticker": "other", "name": "is required"})
	want := FieldErrors{"ticker": "already exists", "name": "is required"}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
	if got, want := f.Error(), "invalid fields: name: is required; ticker: already exists"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestSearchValues(t *testing.T) {
	active := true
	got := PortfolioSearch{Type: AssetCrypto, MinAllocationPct: 2.5, OnlyActive: &active}.Values().Encode()
	if want := "asset_type=CRYPTO&min_allocation_pct=2.5&only_active=true"; got != want {
		t.Errorf("PortfolioSearch.Values() = %q, want %q", got, want)
	}
	got = TransactionSearch{Range: date.Range{From: date.New(2024, 1, 1)}, Type: Sell, Limit: 5}.Values().Encode()
	if want := "from=2024-01-01&limit=5&type=SELL"; got != want {
		t.Errorf("TransactionSearch.Values() = %q, want %q", got, want)
	}
	if got := (AssetSearch{}).Values(); len(got) != 0 {
		t.Errorf("AssetSearch{}.Values() = %v, want empty", got)
	}
}
