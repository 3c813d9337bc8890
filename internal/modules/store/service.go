package store

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/storenetdev/storenet-backend/internal/apperr"
	"github.com/storenetdev/storenet-backend/internal/modules/account"
	"github.com/storenetdev/storenet-backend/internal/modules/inventory"
)

// Service is one store node. It owns the store's inventory, applies the
// authorization rules and either serves a request locally or forwards it to
// the store that owns the item. It also implements Remote so that nodes
// hosted in the same process can be registered directly in the directory.
type Service interface {
	StoreCode() string

	AddItem(ctx context.Context, managerID, itemID, itemName string, quantity int, price float64) (string, error)
	RemoveItem(ctx context.Context, managerID, itemID string, quantity int) (string, error)
	ListItemAvailability(ctx context.Context, managerID string) (string, error)
	PurchaseItem(ctx context.Context, customerID, itemID, date string) (PurchaseResult, error)
	FindItem(ctx context.Context, customerID, itemName string) (string, error)
	ReturnItem(ctx context.Context, customerID, itemID, date string) (string, error)

	Remote
}

// Options tune cross-store calls.
type Options struct {
	// PeerTimeout bounds each call to another store.
	PeerTimeout time.Duration
	// LookupFanout caps concurrent peer lookups during FindItem.
	LookupFanout int
}

const (
	defaultPeerTimeout  = 5 * time.Second
	defaultLookupFanout = 4
)

type node struct {
	storeCode string
	inv       inventory.Service
	accounts  account.Service
	resolver  Resolver
	opts      Options
	logger    *log.Entry

	// now is swapped out in tests; waitlist drain purchases are dated "today".
	now func() time.Time
}

// NewService creates a store node.
func NewService(storeCode string, inv inventory.Service, accounts account.Service, resolver Resolver, opts Options) Service {
	if opts.PeerTimeout <= 0 {
		opts.PeerTimeout = defaultPeerTimeout
	}
	if opts.LookupFanout <= 0 {
		opts.LookupFanout = defaultLookupFanout
	}
	return &node{
		storeCode: storeCode,
		inv:       inv,
		accounts:  accounts,
		resolver:  resolver,
		opts:      opts,
		logger:    log.WithField("store", storeCode),
		now:       time.Now,
	}
}

func (n *node) StoreCode() string { return n.storeCode }

func (n *node) AddItem(ctx context.Context, managerID, itemID, itemName string, quantity int, price float64) (string, error) {
	msg, err := n.inv.AddItem(managerID, itemID, itemName, quantity, price)
	if err != nil {
		return "", err
	}
	n.drainWaitlist(itemID)
	return msg, nil
}

func (n *node) RemoveItem(ctx context.Context, managerID, itemID string, quantity int) (string, error) {
	return n.inv.RemoveItem(managerID, itemID, quantity)
}

func (n *node) ListItemAvailability(ctx context.Context, managerID string) (string, error) {
	return n.inv.ListItemAvailability(managerID)
}

func (n *node) PurchaseItem(ctx context.Context, customerID, itemID, date string) (PurchaseResult, error) {
	if err := n.validateCustomer(customerID); err != nil {
		return PurchaseResult{}, err
	}
	purchaseDate, err := ParseDate(date)
	if err != nil {
		return PurchaseResult{}, err
	}
	itemStore := StoreOf(itemID)
	if itemStore == n.storeCode {
		return n.localPurchase(customerID, itemID, purchaseDate), nil
	}

	remote, err := n.resolver.Resolve(itemStore)
	if err != nil {
		return PurchaseResult{}, err
	}
	budget := n.accounts.RemainingBudget(customerID)
	callCtx, cancel := context.WithTimeout(ctx, n.opts.PeerTimeout)
	defer cancel()
	result, err := remote.RequestRemotePurchase(callCtx, customerID, itemID, date, budget)
	if err != nil {
		return PurchaseResult{}, errors.Wrapf(err, "forward purchase to store %s", itemStore)
	}
	n.logger.WithFields(log.Fields{"customer": customerID, "peer": itemStore, "message": result.Message}).
		Info("forwarded purchase request")
	return result, nil
}

func (n *node) FindItem(ctx context.Context, customerID, itemName string) (string, error) {
	if err := n.validateCustomer(customerID); err != nil {
		return "", err
	}

	others := n.resolver.OtherStores(n.storeCode)
	remoteReports := make([]string, len(others))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.opts.LookupFanout)
	for i, code := range others {
		g.Go(func() error {
			remote, err := n.resolver.Resolve(code)
			if err != nil {
				n.logger.WithField("peer", code).WithError(err).Warn("skipping unknown store in lookup")
				return nil
			}
			callCtx, cancel := context.WithTimeout(gctx, n.opts.PeerTimeout)
			defer cancel()
			report, err := remote.RequestRemoteItemLookup(callCtx, itemName)
			if err != nil {
				n.logger.WithField("peer", code).WithError(err).Warn("skipping unreachable store in lookup")
				return nil
			}
			remoteReports[i] = report
			return nil
		})
	}
	_ = g.Wait()

	// Local lines always come first; remote lines follow in store order.
	var lines []string
	if local := n.inv.Search(itemName); local != "" {
		lines = append(lines, local)
	}
	for _, report := range remoteReports {
		if strings.TrimSpace(report) != "" {
			lines = append(lines, report)
		}
	}
	if len(lines) == 0 {
		return "No items found.", nil
	}
	return strings.Join(lines, "\n"), nil
}

func (n *node) ReturnItem(ctx context.Context, customerID, itemID, date string) (string, error) {
	if err := n.validateCustomer(customerID); err != nil {
		return "", err
	}
	returnDate, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	itemStore := StoreOf(itemID)
	if itemStore == n.storeCode {
		return n.processReturn(customerID, itemID, returnDate), nil
	}

	remote, err := n.resolver.Resolve(itemStore)
	if err != nil {
		return "", err
	}
	callCtx, cancel := context.WithTimeout(ctx, n.opts.PeerTimeout)
	defer cancel()
	accepted, err := remote.RequestRemoteReturn(callCtx, customerID, itemID, date)
	if err != nil {
		return "", errors.Wrapf(err, "forward return to store %s", itemStore)
	}
	message := "Unable to return item " + itemID
	if accepted {
		message = "Return processed by store " + itemStore
	}
	n.logger.WithFields(log.Fields{"customer": customerID, "peer": itemStore, "message": message}).
		Info("forwarded return request")
	return message, nil
}

func (n *node) RequestRemotePurchase(ctx context.Context, customerID, itemID, date string, budgetRemaining float64) (PurchaseResult, error) {
	// budgetRemaining is informational; admission is decided by the account
	// ledger this node is wired to.
	purchaseDate, err := ParseDate(date)
	if err != nil {
		return PurchaseResult{}, err
	}
	result := n.localPurchase(customerID, itemID, purchaseDate)
	if !result.Success {
		n.logger.WithFields(log.Fields{"customer": customerID, "item": itemID, "message": result.Message}).
			Info("remote purchase failed")
	}
	return result, nil
}

func (n *node) RequestRemoteItemLookup(ctx context.Context, itemName string) (string, error) {
	return n.inv.Search(itemName), nil
}

func (n *node) RequestRemoteReturn(ctx context.Context, customerID, itemID, date string) (bool, error) {
	returnDate, err := ParseDate(date)
	if err != nil {
		return false, err
	}
	response := n.processReturn(customerID, itemID, returnDate)
	return strings.Contains(strings.ToLower(response), "success"), nil
}

// localPurchase runs the per-item purchase algorithm. The item lock is held
// across the quantity check and the account admission so the compound
// decision is atomic; lock order is always item first, then account.
func (n *node) localPurchase(customerID, itemID string, purchaseDate time.Time) PurchaseResult {
	item, ok := n.inv.Item(itemID)
	if !ok {
		// Keep a spot for future restocks of an item nobody has added yet.
		n.inv.EnsureWaitlist(itemID)
		return PurchaseResult{Success: false, Message: "Item " + itemID + " is not available."}
	}
	item.Lock()
	defer item.Unlock()
	if item.Quantity <= 0 {
		n.inv.Enqueue(itemID, customerID)
		n.logger.WithFields(log.Fields{"customer": customerID, "item": itemID}).
			Info("customer added to waitlist")
		return PurchaseResult{Success: false, Message: "Item unavailable. Added to waitlist."}
	}
	price := item.Price
	if !n.accounts.AttemptPurchase(customerID, n.storeCode, itemID, price, purchaseDate) {
		return PurchaseResult{Success: false, Message: "Purchase denied due to budget or policy limits."}
	}
	item.Quantity--
	n.logger.WithFields(log.Fields{"customer": customerID, "item": itemID, "price": price}).
		Info("purchase completed")
	return PurchaseResult{Success: true, Message: "Purchase successful for item " + itemID, PriceCharged: price}
}

func (n *node) processReturn(customerID, itemID string, returnDate time.Time) string {
	item, ok := n.inv.Item(itemID)
	if !ok {
		return "Item " + itemID + " does not belong to store " + n.storeCode
	}
	record, ok := n.accounts.ConsumeRecord(customerID, itemID)
	if !ok {
		return "No purchase record found for item " + itemID
	}
	if record.PurchaseDate.AddDate(0, 0, 30).Before(returnDate) {
		n.accounts.RestoreRecord(customerID, record)
		return "Return period expired for item " + itemID
	}
	item.Lock()
	item.Quantity++
	n.accounts.Refund(customerID, record.Price)
	item.Unlock()
	n.logger.WithFields(log.Fields{"customer": customerID, "item": itemID}).Info("return accepted")
	n.drainWaitlist(itemID)
	return "Return successful for item " + itemID
}

// drainWaitlist serves waitlisted customers strictly in FIFO arrival order
// while stock lasts. A customer whose automatic purchase is denied (budget,
// policy) is not requeued. Each pass acquires the item lock once per served
// customer inside localPurchase; nothing here re-enters a critical section.
func (n *node) drainWaitlist(itemID string) {
	for {
		item, ok := n.inv.Item(itemID)
		if !ok {
			n.inv.DropWaitlist(itemID)
			return
		}
		if item.Quantity <= 0 || n.inv.WaitlistLen(itemID) == 0 {
			return
		}
		customerID, ok := n.inv.PopWaitlist(itemID)
		if !ok {
			return
		}
		result := n.localPurchase(customerID, itemID, n.now())
		entry := n.logger.WithFields(log.Fields{"customer": customerID, "item": itemID, "message": result.Message})
		if result.Success {
			entry.Info("waitlisted customer served")
		} else {
			entry.Info("waitlisted purchase failed")
		}
	}
}

func (n *node) validateCustomer(customerID string) error {
	if !validCustomer(customerID, n.storeCode) {
		return errors.Wrapf(apperr.ErrUnauthorized,
			"customer %s must interact with home store %s", customerID, n.storeCode)
	}
	return nil
}
