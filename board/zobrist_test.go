package board

import "testing"

func TestIncrementalHashMatchesRecompute(t *testing.T) {
	t.Parallel()
	rng := splitmix64{state: 42}
	for i := 0; i < 500; i++ {
		p := randomPlayout(&rng, int(rng.next()%TotalCells)+1)
		if got, want := p.Hash(), computeHash(p.mover, p.mask, p.moves); got != want {
			t.Fatalf("incremental hash diverged after %d moves: got=%#x want=%#x", p.Moves(), got, want)
		}
	}
}

func TestHashDistinguishesPositions(t *testing.T) {
	t.Parallel()
	seen := make(map[uint64]Position)
	rng := splitmix64{state: 314}
	for i := 0; i < 300; i++ {
		p := randomPlayout(&rng, int(rng.next()%20)+1)
		if prev, ok := seen[p.Hash()]; ok && prev != p {
			t.Fatalf("hash collision between distinct positions: %#x", p.Hash())
		}
		seen[p.Hash()] = p
	}
}

func TestHashOrderIndependence(t *testing.T) {
	t.Parallel()
	// transpositions reaching the same stones must hash equal
	a := playSequence(t, 0, 1, 2, 3)
	b := playSequence(t, 2, 3, 0, 1)
	if a.Hash() != b.Hash() {
		t.Errorf("transposed move orders should hash equal")
	}
	if a != b {
		t.Errorf("transposed move orders should reach the same position")
	}
}
