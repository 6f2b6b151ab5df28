package tips

import "testing"

func TestRandomReturnsKnownTip(t *testing.T) {
	known := make(map[string]bool)
	for _, tip := range All() {
		known[tip] = true
	}
	for i := 0; i < 50; i++ {
		if tip := Random(); !known[tip] {
			t.Fatalf("unknown tip %q", tip)
		}
	}
}

func TestTipsNonEmpty(t *testing.T) {
	for i, tip := range All() {
		if tip == "" {
			t.Errorf("tip %d is empty", i)
		}
	}
}
