package inventory

// Repository stores a single store's items and their waitlists. Lookups are
// safe for concurrent use without further locking; compound check-then-act
// sequences on an item still require the item's own lock.
type Repository interface {
	Get(itemID string) (*Item, bool)
	// GetOrCreate returns the existing item, or inserts a fresh one built from
	// the arguments, as a single atomic step. created reports which happened.
	GetOrCreate(itemID, itemName string, quantity int, price float64) (item *Item, created bool)
	// Delete removes the item together with its waitlist.
	Delete(itemID string)
	List() []*Item

	// EnsureWaitlist creates an empty waitlist for the item if none exists.
	EnsureWaitlist(itemID string)
	// Enqueue appends the customer to the item's waitlist, creating it if
	// needed. Duplicates are allowed.
	Enqueue(itemID, customerID string)
	// PopWaitlist removes and returns the oldest waitlisted customer.
	PopWaitlist(itemID string) (string, bool)
	WaitlistLen(itemID string) int
	DropWaitlist(itemID string)
}
