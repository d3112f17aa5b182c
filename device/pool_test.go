package device

import "testing"

func TestCommandPoolResetReclaimsLists(t *testing.T) {
	d := newTestDevice()
	pool, err := d.NewCommandPool(CommandPoolConfig{MaxLists: 2, Resettable: true})
	if err != nil {
		t.Fatal(err)
	}

	l1, err := pool.NewCommandList()
	if err != nil {
		t.Fatal(err)
	}
	if err := l1.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := l1.End(); err != nil {
		t.Fatal(err)
	}
	if l1.state != listExecutable {
		t.Fatalf("expected Executable, got %v", l1.state)
	}

	if err := pool.Reset(); err != nil {
		t.Fatal(err)
	}
	if l1.state != listInitial {
		t.Fatalf("pool.Reset must return lists to Initial, got %v", l1.state)
	}

	// Individual reset is allowed once Resettable is set.
	if err := l1.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := l1.Reset(); err != nil {
		t.Fatalf("individual Reset on a resettable pool's list must succeed: %v", err)
	}

	d.DestroyCommandPool(pool)
}

func TestCommandPoolNotResettableRejectsIndividualReset(t *testing.T) {
	d := newTestDevice()
	pool, err := d.NewCommandPool(CommandPoolConfig{MaxLists: 1})
	if err != nil {
		t.Fatal(err)
	}
	l, err := pool.NewCommandList()
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Reset(); err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if err := pool.Reset(); err != ErrInvalidState {
		t.Fatalf("expected pool.Reset on a non-resettable pool to also fail, got %v", err)
	}
	d.DestroyCommandPool(pool)
}

func TestCommandPoolExhaustion(t *testing.T) {
	d := newTestDevice()
	pool, err := d.NewCommandPool(CommandPoolConfig{MaxLists: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pool.NewCommandList(); err != nil {
		t.Fatal(err)
	}
	if _, err := pool.NewCommandList(); err != ErrPoolExhausted {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
	d.DestroyCommandPool(pool)
}
