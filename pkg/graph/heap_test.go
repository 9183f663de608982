package graph

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
)

func TestMinHeap_InsertExtract(t *testing.T) {
	h := NewMinHeap(10)
	mustInsert(t, h, 3, 5)
	mustInsert(t, h, 7, 2)
	mustInsert(t, h, 1, 8)

	want := []int{7, 3, 1}
	for i, w := range want {
		v, ok := h.ExtractMin()
		if !ok {
			t.Fatalf("extract %d: heap unexpectedly empty", i)
		}
		if v != w {
			t.Errorf("extract %d = %d, want %d", i, v, w)
		}
		if h.Contains(v) {
			t.Errorf("Contains(%d) after extraction", v)
		}
		if !h.Finalized(v) {
			t.Errorf("Finalized(%d) = false after extraction", v)
		}
	}

	if _, ok := h.ExtractMin(); ok {
		t.Error("expected empty heap after three extractions")
	}
}

func TestMinHeap_DecreaseKey(t *testing.T) {
	h := NewMinHeap(10)
	mustInsert(t, h, 3, 5)
	mustInsert(t, h, 7, 2)
	mustInsert(t, h, 1, 8)

	if !h.DecreaseKey(1, 1) {
		t.Fatal("DecreaseKey(1, 1) returned false")
	}
	if v, _ := h.ExtractMin(); v != 1 {
		t.Errorf("first extract = %d, want 1", v)
	}
}

func TestMinHeap_DecreaseKeyNeverRaises(t *testing.T) {
	h := NewMinHeap(4)
	mustInsert(t, h, 0, 5)

	if h.DecreaseKey(0, 9) {
		t.Error("DecreaseKey raised a key")
	}
	if h.DecreaseKey(0, 5) {
		t.Error("DecreaseKey with equal key reported a change")
	}
	if k, _ := h.Key(0); k != 5 {
		t.Errorf("key = %v, want 5", k)
	}
	if h.DecreaseKey(2, 1) {
		t.Error("DecreaseKey on an unseen vertex reported a change")
	}
}

func TestMinHeap_InsertNoOp(t *testing.T) {
	h := NewMinHeap(4)
	mustInsert(t, h, 2, 5)
	mustInsert(t, h, 2, 1)

	if h.Len() != 1 {
		t.Fatalf("Len = %d, want 1", h.Len())
	}
	if k, _ := h.Key(2); k != 5 {
		t.Errorf("duplicate insert changed key to %v", k)
	}

	h.ExtractMin()
	mustInsert(t, h, 2, 0)
	if !h.IsEmpty() {
		t.Error("insert of a finalized vertex re-queued it")
	}
	if !h.Finalized(2) {
		t.Error("vertex 2 should be finalized")
	}
}

func TestMinHeap_CapacityExceeded(t *testing.T) {
	h := NewMinHeap(3)

	tests := []int{-1, 3, 100}
	for _, v := range tests {
		err := h.Insert(v, 1)
		if !errors.Is(err, ErrCapacityExceeded) {
			t.Errorf("Insert(%d) error = %v, want ErrCapacityExceeded", v, err)
		}
	}
}

func TestMinHeap_RandomOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		n := 1 + rng.Intn(64)
		h := NewMinHeap(n)
		keys := make([]float64, n)
		for v := 0; v < n; v++ {
			keys[v] = float64(rng.Intn(1000))
			mustInsert(t, h, v, keys[v])
		}

		// Lower a random subset.
		for i := 0; i < n/2; i++ {
			v := rng.Intn(n)
			k := keys[v] - float64(rng.Intn(100)) - 1
			if h.DecreaseKey(v, k) {
				keys[v] = k
			}
		}

		sorted := append([]float64(nil), keys...)
		sort.Float64s(sorted)

		for i := 0; i < n; i++ {
			v, ok := h.ExtractMin()
			if !ok {
				t.Fatalf("round %d: heap empty after %d of %d", round, i, n)
			}
			if keys[v] != sorted[i] {
				t.Fatalf("round %d: extract %d key = %v, want %v", round, i, keys[v], sorted[i])
			}
		}
	}
}

func mustInsert(t *testing.T, h *MinHeap, v int, key float64) {
	t.Helper()
	if err := h.Insert(v, key); err != nil {
		t.Fatalf("Insert(%d, %v): %v", v, key, err)
	}
}
