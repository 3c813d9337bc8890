package inventory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/storenetdev/storenet-backend/internal/apperr"
)

// managerMarker is the third character of every manager identifier.
const managerMarker = 'M'

// Service defines the inventory operations of one store. Manager-facing
// operations check that the manager id belongs to this store.
type Service interface {
	// AddItem creates the item or increases its quantity. Callers should
	// drain the item's waitlist after a nil-error return.
	AddItem(managerID, itemID, itemName string, quantity int, price float64) (string, error)
	// RemoveItem decreases the quantity, or removes the item and its waitlist
	// entirely when quantity <= 0 or quantity >= current stock. An unknown
	// item yields a message, not an error.
	RemoveItem(managerID, itemID string, quantity int) (string, error)
	// ListItemAvailability returns one line per item sorted by item id.
	ListItemAvailability(managerID string) (string, error)
	// Search returns matching items as "<id> <qty> <price>" lines sorted by
	// item id, or the empty string when nothing matches.
	Search(itemName string) string

	// Item exposes the ledger entry so the store node can run compound
	// purchase decisions under the item's own lock.
	Item(itemID string) (*Item, bool)
	EnsureWaitlist(itemID string)
	Enqueue(itemID, customerID string)
	PopWaitlist(itemID string) (string, bool)
	WaitlistLen(itemID string) int
	DropWaitlist(itemID string)
}

type service struct {
	storeCode string
	repo      Repository
	logger    *log.Entry
}

// NewService creates the inventory service for one store.
func NewService(storeCode string, repo Repository) Service {
	return &service{
		storeCode: storeCode,
		repo:      repo,
		logger:    log.WithField("store", storeCode),
	}
}

func (s *service) AddItem(managerID, itemID, itemName string, quantity int, price float64) (string, error) {
	if err := s.validateManager(managerID); err != nil {
		return "", err
	}
	if !strings.HasPrefix(itemID, s.storeCode) {
		return "", errors.Wrapf(apperr.ErrUnauthorized,
			"manager %s cannot add items for store %s", managerID, storeOf(itemID))
	}
	if quantity <= 0 || price <= 0 {
		return "", errors.Wrap(apperr.ErrValidation, "quantity and price must be greater than zero")
	}

	for {
		item, created := s.repo.GetOrCreate(itemID, itemName, quantity, price)
		if created {
			s.logger.WithFields(log.Fields{"item": itemID, "name": itemName, "quantity": quantity, "price": price}).
				Info("added new item")
			return "Item " + itemID + " successfully added/updated.", nil
		}
		item.Lock()
		// Full removal deletes the entry while holding the item lock, so a
		// pointer that is still the mapped entry here cannot go stale under
		// us. A stale pointer means the item was removed in between; retry.
		if current, ok := s.repo.Get(itemID); !ok || current != item {
			item.Unlock()
			continue
		}
		item.Quantity += quantity
		updated := item.Quantity
		item.Unlock()
		s.logger.WithFields(log.Fields{"item": itemID, "delta": quantity, "quantity": updated}).
			Info("increased item quantity")
		return "Item " + itemID + " successfully added/updated.", nil
	}
}

func (s *service) RemoveItem(managerID, itemID string, quantity int) (string, error) {
	if err := s.validateManager(managerID); err != nil {
		return "", err
	}
	if !strings.HasPrefix(itemID, s.storeCode) {
		return "", errors.Wrapf(apperr.ErrUnauthorized,
			"manager %s cannot remove items for store %s", managerID, storeOf(itemID))
	}

	item, ok := s.repo.Get(itemID)
	if !ok {
		return "Item " + itemID + " does not exist.", nil
	}
	item.Lock()
	defer item.Unlock()
	if quantity <= 0 || quantity >= item.Quantity {
		s.repo.Delete(itemID)
		s.logger.WithField("item", itemID).Info("removed item from inventory")
		return "Item " + itemID + " removed from inventory.", nil
	}
	item.Quantity -= quantity
	s.logger.WithFields(log.Fields{"item": itemID, "delta": quantity, "quantity": item.Quantity}).
		Info("decreased item quantity")
	return fmt.Sprintf("Item %s quantity decreased by %d.", itemID, quantity), nil
}

func (s *service) ListItemAvailability(managerID string) (string, error) {
	if err := s.validateManager(managerID); err != nil {
		return "", err
	}
	items := s.repo.List()
	if len(items) == 0 {
		return "No items available.", nil
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("Item ID: %s, Item Name: %s, Item Quantity: %d, Item Price: %.2f",
			item.ItemID, item.Name, item.Quantity, item.Price))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *service) Search(itemName string) string {
	var matches []*Item
	for _, item := range s.repo.List() {
		if strings.EqualFold(item.Name, itemName) {
			matches = append(matches, item)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ItemID < matches[j].ItemID })
	lines := make([]string, 0, len(matches))
	for _, item := range matches {
		lines = append(lines, fmt.Sprintf("%s %d %.2f", item.ItemID, item.Quantity, item.Price))
	}
	return strings.Join(lines, "\n")
}

func (s *service) Item(itemID string) (*Item, bool) { return s.repo.Get(itemID) }

func (s *service) EnsureWaitlist(itemID string) { s.repo.EnsureWaitlist(itemID) }

func (s *service) Enqueue(itemID, customerID string) { s.repo.Enqueue(itemID, customerID) }

func (s *service) PopWaitlist(itemID string) (string, bool) { return s.repo.PopWaitlist(itemID) }

func (s *service) WaitlistLen(itemID string) int { return s.repo.WaitlistLen(itemID) }

func (s *service) DropWaitlist(itemID string) { s.repo.DropWaitlist(itemID) }

func (s *service) validateManager(managerID string) error {
	if len(managerID) < 3 || !strings.HasPrefix(managerID, s.storeCode+string(managerMarker)) {
		return errors.Wrapf(apperr.ErrUnauthorized,
			"manager %s is not authorized for store %s", managerID, s.storeCode)
	}
	return nil
}

func storeOf(id string) string {
	if len(id) < 2 {
		return id
	}
	return id[:2]
}
