package idgen

import (
	"sort"
	"strings"
	"testing"
	"time"
)

func TestNanoID_Length(t *testing.T) {
	for _, length := range []int{8, 12, 16, 24} {
		gen := NanoID(length)
		id := gen()
		if len(id) != length {
			t.Fatalf("NanoID(%d): got length %d", length, len(id))
		}
	}
}

func TestNanoID_Alphabet(t *testing.T) {
	gen := NanoID(100)
	id := gen()
	for _, c := range id {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')) {
			t.Fatalf("NanoID: unexpected character %q in %q", c, id)
		}
	}
}

func TestNanoID_Uniqueness(t *testing.T) {
	gen := NanoID(12)
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := gen()
		if _, ok := seen[id]; ok {
			t.Fatalf("NanoID: duplicate at iteration %d: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestUUIDv7_Format(t *testing.T) {
	gen := UUIDv7()
	id := gen()
	parts := strings.Split(id, "-")
	if len(parts) != 5 {
		t.Fatalf("UUIDv7: expected 5 parts, got %d in %q", len(parts), id)
	}
	if len(id) != 36 {
		t.Fatalf("UUIDv7: expected length 36, got %d", len(id))
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("aud_", NanoID(8))
	id := gen()
	if !strings.HasPrefix(id, "aud_") {
		t.Fatalf("Prefixed: got %q", id)
	}
	if len(id) != 12 {
		t.Fatalf("Prefixed: expected length 12, got %d", len(id))
	}
}

func TestTimestamped_Format(t *testing.T) {
	gen := Timestamped(NanoID(6))
	id := gen()
	idx := strings.Index(id, "_")
	if idx < 0 {
		t.Fatalf("Timestamped: no separator in %q", id)
	}
	if _, err := time.Parse("20060102T150405Z", id[:idx]); err != nil {
		t.Fatalf("Timestamped: bad timestamp prefix in %q: %v", id, err)
	}
}

func TestSurface_Format(t *testing.T) {
	gen := Surface()
	id := gen()
	parts := strings.Split(id, "-")
	if len(parts) != 3 {
		t.Fatalf("Surface: expected 3 parts, got %d in %q", len(parts), id)
	}
	if _, err := time.Parse("20060102-150405", parts[0]+"-"+parts[1]); err != nil {
		t.Fatalf("Surface: bad timestamp in %q: %v", id, err)
	}
	if len(parts[2]) != 4 {
		t.Fatalf("Surface: suffix length %d in %q", len(parts[2]), id)
	}
}

func TestSurface_SortableByCreation(t *testing.T) {
	gen := Surface()
	ids := []string{gen(), gen(), gen()}
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	// Same-second IDs only differ in the random suffix; only assert the
	// timestamp prefixes stay ordered.
	for i := range ids {
		if ids[i][:15] != sorted[i][:15] {
			t.Fatalf("Surface: timestamp prefixes not sorted: %v", ids)
		}
	}
}
