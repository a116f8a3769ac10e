package engine

import (
	"sync"

	checkout "github.com/sumup/agentic-checkout"
)

// SessionStore holds session records keyed by id. Mutate serializes all
// callers for the same key, which is the only concurrency discipline the
// engine relies on; a durable backend with the same contract slots in
// without changes to the engine.
type SessionStore interface {
	// Insert stores a freshly created session.
	Insert(session checkout.CheckoutSession)
	// Get returns a detached copy of the session.
	Get(id string) (checkout.CheckoutSession, bool)
	// Mutate runs fn under the per-key lock. When fn returns an error the
	// record keeps whatever state fn left it in, so callers mutate only on
	// their success path. The returned session is a detached copy.
	Mutate(id string, fn func(*checkout.CheckoutSession) error) (checkout.CheckoutSession, bool, error)
}

// MemoryStore is the process-lifetime [SessionStore]. The map lock is only
// held to locate an entry, never across a callback, so sessions stay
// independent of each other.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
}

type sessionEntry struct {
	mu      sync.Mutex
	session checkout.CheckoutSession
}

// NewMemoryStore builds an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*sessionEntry),
	}
}

// Insert implements [SessionStore].
func (s *MemoryStore) Insert(session checkout.CheckoutSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.ID] = &sessionEntry{session: cloneSession(session)}
}

// Get implements [SessionStore].
func (s *MemoryStore) Get(id string) (checkout.CheckoutSession, bool) {
	entry := s.lookup(id)
	if entry == nil {
		return checkout.CheckoutSession{}, false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return cloneSession(entry.session), true
}

// Mutate implements [SessionStore].
func (s *MemoryStore) Mutate(id string, fn func(*checkout.CheckoutSession) error) (checkout.CheckoutSession, bool, error) {
	entry := s.lookup(id)
	if entry == nil {
		return checkout.CheckoutSession{}, false, nil
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	err := fn(&entry.session)
	return cloneSession(entry.session), true, err
}

func (s *MemoryStore) lookup(id string) *sessionEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[id]
}

// cloneSession detaches a session from the store so callers can never alias
// stored state through returned pointers.
func cloneSession(s checkout.CheckoutSession) checkout.CheckoutSession {
	out := s
	if s.LineItems != nil {
		out.LineItems = append([]checkout.LineItem(nil), s.LineItems...)
	}
	if s.FulfillmentOptions != nil {
		out.FulfillmentOptions = append([]checkout.FulfillmentOption(nil), s.FulfillmentOptions...)
	}
	out.Buyer = cloneBuyer(s.Buyer)
	out.FulfillmentAddress = cloneAddress(s.FulfillmentAddress)
	out.FulfillmentOptionID = cloneString(s.FulfillmentOptionID)
	if s.Order != nil {
		order := *s.Order
		out.Order = &order
	}
	return out
}

func cloneBuyer(b *checkout.Buyer) *checkout.Buyer {
	if b == nil {
		return nil
	}
	out := *b
	out.PhoneNumber = cloneString(b.PhoneNumber)
	return &out
}

func cloneAddress(a *checkout.Address) *checkout.Address {
	if a == nil {
		return nil
	}
	out := *a
	out.LineTwo = cloneString(a.LineTwo)
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
