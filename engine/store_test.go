package engine

import (
	"errors"
	"sync"
	"testing"

	checkout "github.com/sumup/agentic-checkout"
)

func TestMemoryStoreGetReturnsDetachedCopy(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	buyer := checkout.Buyer{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	store.Insert(checkout.CheckoutSession{
		ID:        "cs_1",
		Buyer:     &buyer,
		LineItems: []checkout.LineItem{{ID: "li_widget", Subtotal: 1000}},
	})

	got, ok := store.Get("cs_1")
	if !ok {
		t.Fatalf("expected session")
	}
	got.Buyer.Email = "mallory@example.com"
	got.LineItems[0].Subtotal = 0

	again, _ := store.Get("cs_1")
	if again.Buyer.Email != "ada@example.com" {
		t.Fatalf("stored buyer was aliased: %s", again.Buyer.Email)
	}
	if again.LineItems[0].Subtotal != 1000 {
		t.Fatalf("stored line items were aliased: %d", again.LineItems[0].Subtotal)
	}
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if _, ok := store.Get("cs_missing"); ok {
		t.Fatalf("expected miss")
	}
}

func TestMemoryStoreMutate(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	store.Insert(checkout.CheckoutSession{ID: "cs_1", Status: checkout.CheckoutSessionStatusNotReadyForPayment})

	got, found, err := store.Mutate("cs_1", func(session *checkout.CheckoutSession) error {
		session.Status = checkout.CheckoutSessionStatusCanceled
		return nil
	})
	if !found || err != nil {
		t.Fatalf("Mutate() found=%v err=%v", found, err)
	}
	if got.Status != checkout.CheckoutSessionStatusCanceled {
		t.Fatalf("unexpected snapshot status %s", got.Status)
	}
	stored, _ := store.Get("cs_1")
	if stored.Status != checkout.CheckoutSessionStatusCanceled {
		t.Fatalf("mutation did not commit")
	}
}

func TestMemoryStoreMutateUnknown(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	_, found, err := store.Mutate("cs_missing", func(*checkout.CheckoutSession) error {
		t.Fatalf("callback must not run for unknown ids")
		return nil
	})
	if found || err != nil {
		t.Fatalf("expected miss, found=%v err=%v", found, err)
	}
}

func TestMemoryStoreMutateSurfacesCallbackError(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	store.Insert(checkout.CheckoutSession{ID: "cs_1"})

	boom := errors.New("boom")
	_, found, err := store.Mutate("cs_1", func(*checkout.CheckoutSession) error {
		return boom
	})
	if !found {
		t.Fatalf("expected session to be found")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestMemoryStoreMutateSerializesPerKey(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	store.Insert(checkout.CheckoutSession{ID: "cs_1", LineItems: []checkout.LineItem{{ID: "li", Subtotal: 0}}})

	const workers = 32
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = store.Mutate("cs_1", func(session *checkout.CheckoutSession) error {
				session.LineItems[0].Subtotal++
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := store.Get("cs_1")
	if got.LineItems[0].Subtotal != workers {
		t.Fatalf("expected %d increments got %d", workers, got.LineItems[0].Subtotal)
	}
}
