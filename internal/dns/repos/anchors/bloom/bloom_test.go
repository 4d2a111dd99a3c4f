package bloom

import (
	"fmt"
	"testing"
)

func TestSizer_CommonCases(t *testing.T) {
	s := NewSizer()

	// n=1, p=1% -> m~10, k~7
	m, k := s.Size(1, 0.01)
	if m < 10 || k != 7 {
		t.Fatalf("n=1,p=0.01: got m=%d k=%d; want m>=10 k=7", m, k)
	}

	// n=1e6, p=1% -> m~9.585e6 bits, k~7
	m, k = s.Size(1_000_000, 0.01)
	if m < 9_500_000 || m > 9_700_000 {
		t.Fatalf("n=1e6,p=0.01: unexpected m=%d (expected around 9.6e6)", m)
	}
	if k != 7 {
		t.Fatalf("n=1e6,p=0.01: k=%d; want 7", k)
	}

	m, k = s.Size(10_000, 0.5)
	if k != 1 || m == 0 {
		t.Fatalf("p=0.5: m=%d k=%d; want k=1 m>=1", m, k)
	}
}

func TestSizer_ClampingAndDefaults(t *testing.T) {
	s := NewSizer()

	m, k := s.Size(0, 0)
	if m == 0 || k == 0 {
		t.Fatalf("n=0,p=0: expected m>=1 and k>=1; got m=%d k=%d", m, k)
	}
	m2, k2 := s.Size(100, 1.0)
	m3, k3 := s.Size(100, 0.01)
	if m2 != m3 || k2 != k3 {
		t.Fatalf("p>=1 should fall back to 0.01: got %d/%d want %d/%d", m2, k2, m3, k3)
	}
}

func TestFilter_AddMightContainClear(t *testing.T) {
	f := NewFactory().New(1000, 0.001)

	for i := 0; i < 100; i++ {
		f.Add([]byte(fmt.Sprintf("key-%d", i)))
	}
	for i := 0; i < 100; i++ {
		if !f.MightContain([]byte(fmt.Sprintf("key-%d", i))) {
			t.Fatalf("added key-%d reported absent", i)
		}
	}

	falsePositives := 0
	for i := 0; i < 1000; i++ {
		if f.MightContain([]byte(fmt.Sprintf("other-%d", i))) {
			falsePositives++
		}
	}
	if falsePositives > 20 {
		t.Fatalf("too many false positives: %d/1000", falsePositives)
	}

	f.Clear()
	if f.MightContain([]byte("key-1")) {
		t.Fatalf("cleared filter should report absent")
	}
}
