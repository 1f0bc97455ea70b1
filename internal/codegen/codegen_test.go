package codegen

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestGenerate_Format(t *testing.T) {
	g := New()
	for i := 0; i < 1000; i++ {
		code := g.Generate()
		if len(code) != Length {
			t.Fatalf("expected %d chars, got %q", Length, code)
		}
		for _, c := range code {
			if !strings.ContainsRune(Alphabet, c) {
				t.Fatalf("unexpected character %q in %q", c, code)
			}
		}
	}
}

func TestGenerate_ConcurrentUnique(t *testing.T) {
	g := New()
	const workers, perWorker = 8, 500

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				code := g.Generate()
				mu.Lock()
				seen[code] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("expected %d distinct codes, got %d", workers*perWorker, len(seen))
	}
}

func TestFromUUID_Deterministic(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	if FromUUID(id) != FromUUID(id) {
		t.Error("same uuid must map to the same code")
	}
	if FromUUID(uuid.Nil) != "00000000" {
		t.Errorf("nil uuid expected 00000000, got %q", FromUUID(uuid.Nil))
	}
}
