package inventory

// Item is a single ledger entry in a store's inventory. The first two
// characters of ItemID name the owning store. Quantity is mutated only while
// the item's lock is held; it never goes below zero.
type Item struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`

	lock FairLock
}

// NewItem creates a ledger entry with its own lock.
func NewItem(itemID, name string, quantity int, price float64) *Item {
	return &Item{ItemID: itemID, Name: name, Price: price, Quantity: quantity}
}

// Lock acquires the item's FIFO lock.
func (i *Item) Lock() { i.lock.Lock() }

// Unlock releases the item's FIFO lock.
func (i *Item) Unlock() { i.lock.Unlock() }
