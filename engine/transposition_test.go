package engine

import (
	"testing"
)

func TestTableStoreProbe(t *testing.T) {
	t.Parallel()

	tbl := NewTranspositionTable(10)
	hash := uint64(0xdeadbeefcafe1234)

	if _, _, ok := tbl.Probe(hash, 0, 4, -ScoreInfinite, ScoreInfinite); ok {
		t.Fatal("unexpected hit on empty table")
	}

	tbl.Store(hash, 0, 6, 42, EntryTypeExact, 3)

	value, move, ok := tbl.Probe(hash, 0, 6, -ScoreInfinite, ScoreInfinite)
	if !ok || value != 42 || move != 3 {
		t.Errorf("unexpected probe: value=%d move=%d ok=%v", value, move, ok)
	}

	// deeper request than stored: the value no longer covers it, but the
	// move hint survives
	_, move, ok = tbl.Probe(hash, 0, 8, -ScoreInfinite, ScoreInfinite)
	if ok {
		t.Error("unexpected usable value for deeper probe")
	}
	if move != 3 {
		t.Errorf("unexpected move hint: got=%d want=3", move)
	}
}

func TestTableBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		kind        EntryType
		value       int32
		alpha, beta int32
		wantOK      bool
	}{
		{name: "exact always usable", kind: EntryTypeExact, value: 10, alpha: -100, beta: 100, wantOK: true},
		{name: "lower bound inside window", kind: EntryTypeLowerBound, value: 50, alpha: 0, beta: 100, wantOK: false},
		{name: "lower bound crosses beta", kind: EntryTypeLowerBound, value: 50, alpha: 0, beta: 40, wantOK: true},
		{name: "upper bound inside window", kind: EntryTypeUpperBound, value: 50, alpha: 0, beta: 100, wantOK: false},
		{name: "upper bound crosses alpha", kind: EntryTypeUpperBound, value: 50, alpha: 60, beta: 100, wantOK: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tbl := NewTranspositionTable(8)
			hash := uint64(0x1122334455667788)
			tbl.Store(hash, 0, 5, tt.value, tt.kind, 2)

			value, _, ok := tbl.Probe(hash, 0, 5, tt.alpha, tt.beta)
			if ok != tt.wantOK {
				t.Fatalf("unexpected ok: got=%v want=%v", ok, tt.wantOK)
			}
			if ok && value != tt.value {
				t.Errorf("unexpected value: got=%d want=%d", value, tt.value)
			}
		})
	}
}

func TestTableDeeperEntryKept(t *testing.T) {
	t.Parallel()

	tbl := NewTranspositionTable(8)
	hash := uint64(0xabcdef)

	tbl.Store(hash, 0, 9, 77, EntryTypeExact, 5)
	tbl.Store(hash, 0, 3, -1, EntryTypeExact, 1)

	value, move, ok := tbl.Probe(hash, 0, 9, -ScoreInfinite, ScoreInfinite)
	if !ok || value != 77 || move != 5 {
		t.Errorf("shallow store clobbered deeper entry: value=%d move=%d ok=%v", value, move, ok)
	}
}

func TestTableGenerationAging(t *testing.T) {
	t.Parallel()

	tbl := NewTranspositionTable(8)
	hash := uint64(0x55aa55aa)
	tbl.Store(hash, 0, 4, 13, EntryTypeExact, 0)

	tbl.NextGeneration()
	if _, _, ok := tbl.Probe(hash, 0, 4, -ScoreInfinite, ScoreInfinite); ok {
		t.Fatal("stale generation entry still usable")
	}

	// a fresh store in the new generation wins over the stale deeper entry
	tbl.Store(hash, 0, 1, 99, EntryTypeExact, 6)
	value, _, ok := tbl.Probe(hash, 0, 1, -ScoreInfinite, ScoreInfinite)
	if !ok || value != 99 {
		t.Errorf("unexpected probe after restore: value=%d ok=%v", value, ok)
	}
}

func TestTableWorkerPartitions(t *testing.T) {
	t.Parallel()

	tbl := NewTranspositionTable(12)
	hash := uint64(0xfedcba9876543210)

	seen := make(map[uint64]uint64)
	for worker := uint64(1); worker <= 8; worker++ {
		idx := tbl.index(hash, worker)
		if got := idx & ((1 << partitionBits) - 1); got != worker-1 {
			t.Errorf("worker %d: low bits %d", worker, got)
		}
		if prev, dup := seen[idx]; dup {
			t.Errorf("workers %d and %d share slot %d", prev, worker, idx)
		}
		seen[idx] = worker
	}
}

func TestTableDisabled(t *testing.T) {
	t.Parallel()

	tbl := NewTranspositionTable(0)
	tbl.Store(1, 0, 4, 10, EntryTypeExact, 3)
	if _, _, ok := tbl.Probe(1, 0, 4, -ScoreInfinite, ScoreInfinite); ok {
		t.Fatal("disabled table produced a hit")
	}
}
