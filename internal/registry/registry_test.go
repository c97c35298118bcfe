package registry

import "testing"

func TestAssignFirstSeenOrder(t *testing.T) {
	reg := New(3)

	a, err := reg.Assign("BTCUSDT")
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	b, err := reg.Assign("ETHUSDT")
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if a != 1 || b != 2 {
		t.Fatalf("expected indexes 1 and 2, got %d and %d", a, b)
	}

	again, err := reg.Assign("BTCUSDT")
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if again != a {
		t.Fatalf("expected stable index %d, got %d", a, again)
	}
}

func TestIndexZeroReserved(t *testing.T) {
	reg := New(2)
	if sym := reg.Symbol(0); sym != "" {
		t.Fatalf("expected index 0 to stay unassigned, got %q", sym)
	}
	idx, err := reg.Assign("BTCUSDT")
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if idx == 0 {
		t.Fatal("index 0 must never be assigned")
	}
	if sym := reg.Symbol(idx); sym != "BTCUSDT" {
		t.Fatalf("expected BTCUSDT at index %d, got %q", idx, sym)
	}
}

func TestAssignCapacityBound(t *testing.T) {
	reg := New(1)
	if _, err := reg.Assign("BTCUSDT"); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := reg.Assign("ETHUSDT"); err != ErrRegistryFull {
		t.Fatalf("expected ErrRegistryFull, got %v", err)
	}
	// A known symbol still resolves at capacity.
	if _, err := reg.Assign("BTCUSDT"); err != nil {
		t.Fatalf("Assign known symbol: %v", err)
	}
}
