package account

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultBudget is granted to every customer account on first reference.
const DefaultBudget = 1000.0

// PurchaseRecord is one outstanding purchase. It is created on a successful
// purchase, consumed on return, and re-inserted if an expired return attempt
// has to be undone.
type PurchaseRecord struct {
	ID           uuid.UUID `json:"id"`
	ItemID       string    `json:"item_id"`
	StoreCode    string    `json:"store_code"`
	PurchaseDate time.Time `json:"purchase_date"`
	Price        float64   `json:"price"`
}

// Account is one customer's budget and purchase ledger. Every method is its
// own critical section; the admission decision in AttemptPurchase is atomic.
type Account struct {
	customerID string

	mu                sync.Mutex
	remainingBudget   float64
	purchasesPerStore map[string]int
	purchasesByItem   map[string][]*PurchaseRecord
}

// NewAccount creates an account with the default budget.
func NewAccount(customerID string) *Account {
	return &Account{
		customerID:        customerID,
		remainingBudget:   DefaultBudget,
		purchasesPerStore: make(map[string]int),
		purchasesByItem:   make(map[string][]*PurchaseRecord),
	}
}

// CustomerID returns the owning customer's identifier.
func (a *Account) CustomerID() string { return a.customerID }

// RemainingBudget returns the budget left to spend.
func (a *Account) RemainingBudget() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.remainingBudget
}

// AttemptPurchase admits or rejects a purchase. A purchase at the home store
// only needs sufficient budget; at any other store the customer may also hold
// at most one outstanding purchase from that store. On admission the price is
// deducted, the store counter incremented and a record appended at the tail,
// so the oldest purchase is always returned first.
func (a *Account) AttemptPurchase(storeCode, itemID string, price float64, date time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if storeCode != a.homeStore() && a.purchasesPerStore[storeCode] >= 1 {
		return false
	}
	if a.remainingBudget < price {
		return false
	}
	a.purchasesPerStore[storeCode]++
	a.remainingBudget -= price
	a.purchasesByItem[itemID] = append(a.purchasesByItem[itemID], &PurchaseRecord{
		ID:           uuid.New(),
		ItemID:       itemID,
		StoreCode:    storeCode,
		PurchaseDate: date,
		Price:        price,
	})
	return true
}

// HasRecord reports whether any outstanding purchase exists for the item.
func (a *Account) HasRecord(itemID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.purchasesByItem[itemID]) > 0
}

// ConsumeRecord removes and returns the oldest outstanding purchase of the
// item and decrements the store counter, dropping the counter entry at zero.
// The budget is untouched; refunding is the caller's decision.
func (a *Account) ConsumeRecord(itemID string) (*PurchaseRecord, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	records := a.purchasesByItem[itemID]
	if len(records) == 0 {
		return nil, false
	}
	record := records[0]
	a.purchasesByItem[itemID] = records[1:]
	a.purchasesPerStore[record.StoreCode]--
	if a.purchasesPerStore[record.StoreCode] <= 0 {
		delete(a.purchasesPerStore, record.StoreCode)
	}
	return record, true
}

// RestoreRecord is the exact inverse of ConsumeRecord: it re-inserts the
// record at the head of the item's list and re-increments the store counter.
// Used only to undo an expired return attempt.
func (a *Account) RestoreRecord(record *PurchaseRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.purchasesPerStore[record.StoreCode]++
	a.purchasesByItem[record.ItemID] = append([]*PurchaseRecord{record}, a.purchasesByItem[record.ItemID]...)
}

// Refund credits the price back to the budget.
func (a *Account) Refund(price float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.remainingBudget += price
}

// RemotePurchaseCount returns the outstanding purchases held at a store.
func (a *Account) RemotePurchaseCount(storeCode string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.purchasesPerStore[storeCode]
}

func (a *Account) homeStore() string {
	if len(a.customerID) < 2 {
		return a.customerID
	}
	return a.customerID[:2]
}
