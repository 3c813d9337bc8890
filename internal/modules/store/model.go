package store

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/storenetdev/storenet-backend/internal/apperr"
)

// DateLayout is the fixed wire format for dates: two-digit day, two-digit
// month, four-digit year, no separators.
const DateLayout = "02012006"

// customerMarker is the third character of every customer identifier.
const customerMarker = 'U'

// PurchaseResult is the outcome of any purchase-shaped operation.
type PurchaseResult struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	PriceCharged float64 `json:"price_charged"`
}

// Remote is the cross-store call surface. The remote entry points trust that
// the calling node already validated the customer's home-store identity; they
// do not re-check it.
type Remote interface {
	RequestRemotePurchase(ctx context.Context, customerID, itemID, date string, budgetRemaining float64) (PurchaseResult, error)
	RequestRemoteItemLookup(ctx context.Context, itemName string) (string, error)
	RequestRemoteReturn(ctx context.Context, customerID, itemID, date string) (bool, error)
}

// Resolver turns a store code into a callable handle. The directory module
// provides the canonical implementation.
type Resolver interface {
	Resolve(storeCode string) (Remote, error)
	// OtherStores lists every known store except the given one, in a fixed
	// iteration order.
	OtherStores(storeCode string) []string
}

// ParseDate parses a wire date, reporting a validation error on bad input.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, errors.Wrapf(apperr.ErrValidation, "invalid date %q, expected ddMMyyyy", date)
	}
	return t, nil
}

// StoreOf returns the owning store code of any identifier.
func StoreOf(id string) string {
	if len(id) < 2 {
		return id
	}
	return id[:2]
}

func validCustomer(customerID, storeCode string) bool {
	return len(customerID) >= 3 && strings.HasPrefix(customerID, storeCode+string(customerMarker))
}
