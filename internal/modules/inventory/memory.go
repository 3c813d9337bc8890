package inventory

import "sync"

// memoryRepository keeps items and waitlists in process memory. Persistence
// across restarts is deliberately not provided.
type memoryRepository struct {
	mu        sync.RWMutex
	items     map[string]*Item
	waitlists map[string][]string
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		items:     make(map[string]*Item),
		waitlists: make(map[string][]string),
	}
}

func (r *memoryRepository) Get(itemID string) (*Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[itemID]
	return item, ok
}

func (r *memoryRepository) GetOrCreate(itemID, itemName string, quantity int, price float64) (*Item, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[itemID]; ok {
		return item, false
	}
	item := NewItem(itemID, itemName, quantity, price)
	r.items[itemID] = item
	return item, true
}

func (r *memoryRepository) Delete(itemID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, itemID)
	delete(r.waitlists, itemID)
}

func (r *memoryRepository) List() []*Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]*Item, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}
	return items
}

func (r *memoryRepository) EnsureWaitlist(itemID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.waitlists[itemID]; !ok {
		r.waitlists[itemID] = nil
	}
}

func (r *memoryRepository) Enqueue(itemID, customerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waitlists[itemID] = append(r.waitlists[itemID], customerID)
}

func (r *memoryRepository) PopWaitlist(itemID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	queue := r.waitlists[itemID]
	if len(queue) == 0 {
		return "", false
	}
	customerID := queue[0]
	r.waitlists[itemID] = queue[1:]
	return customerID, true
}

func (r *memoryRepository) WaitlistLen(itemID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.waitlists[itemID])
}

func (r *memoryRepository) DropWaitlist(itemID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.waitlists, itemID)
}
