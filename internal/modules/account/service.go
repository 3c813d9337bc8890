package account

import (
	"sync"
	"time"
)

// Service is the customer account directory: a lazily populated registry of
// accounts keyed by customer id. Accounts live for the process lifetime and
// are never persisted. Inject one instance and share it between the store
// nodes that should see a single logical ledger.
type Service interface {
	// Account returns the customer's account, creating it on first reference.
	Account(customerID string) *Account
	RemainingBudget(customerID string) float64
	AttemptPurchase(customerID, storeCode, itemID string, price float64, date time.Time) bool
	// ConsumeRecord returns false when the customer has no account or no
	// outstanding purchase of the item.
	ConsumeRecord(customerID, itemID string) (*PurchaseRecord, bool)
	RestoreRecord(customerID string, record *PurchaseRecord)
	Refund(customerID string, price float64)
}

type service struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewService creates an empty account directory.
func NewService() Service {
	return &service{accounts: make(map[string]*Account)}
}

func (s *service) Account(customerID string) *Account {
	s.mu.RLock()
	acct, ok := s.accounts[customerID]
	s.mu.RUnlock()
	if ok {
		return acct
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct, ok := s.accounts[customerID]; ok {
		return acct
	}
	acct = NewAccount(customerID)
	s.accounts[customerID] = acct
	return acct
}

func (s *service) RemainingBudget(customerID string) float64 {
	return s.Account(customerID).RemainingBudget()
}

func (s *service) AttemptPurchase(customerID, storeCode, itemID string, price float64, date time.Time) bool {
	return s.Account(customerID).AttemptPurchase(storeCode, itemID, price, date)
}

func (s *service) ConsumeRecord(customerID, itemID string) (*PurchaseRecord, bool) {
	s.mu.RLock()
	acct, ok := s.accounts[customerID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return acct.ConsumeRecord(itemID)
}

func (s *service) RestoreRecord(customerID string, record *PurchaseRecord) {
	s.Account(customerID).RestoreRecord(record)
}

func (s *service) Refund(customerID string, price float64) {
	s.Account(customerID).Refund(price)
}
