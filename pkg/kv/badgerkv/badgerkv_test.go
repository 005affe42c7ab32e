package badgerkv

import "testing"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := DefaultConfig("")
	cfg.InMemory = true
	cfg.SyncWrites = false
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetSetDelete(t *testing.T) {
	s := openTestStore(t)
	if _, ok, _ := s.Get([]byte("a")); ok {
		t.Fatalf("expected miss")
	}
	if err := s.Set([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get([]byte("a"))
	if err != nil || !ok || string(v) != "1" {
		t.Fatalf("expected a=1, got %q ok=%v err=%v", v, ok, err)
	}
	if err := s.Delete([]byte("a")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get([]byte("a")); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestScanPrefix(t *testing.T) {
	s := openTestStore(t)
	for _, k := range []string{"ab", "abc", "b"} {
		if err := s.Set([]byte(k), []byte(k)); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	it, err := s.ScanPrefix([]byte("ab"))
	if err != nil {
		t.Fatalf("scan prefix: %v", err)
	}
	defer it.Close()
	var got []string
	for it.Next() {
		got = append(got, string(it.Key()))
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %v", got)
	}
}
