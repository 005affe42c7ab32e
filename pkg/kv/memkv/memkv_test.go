package memkv

import "testing"

func TestGetSetDelete(t *testing.T) {
	s := New()
	if _, ok, _ := s.Get([]byte("a")); ok {
		t.Fatalf("expected miss")
	}
	_ = s.Set([]byte("a"), []byte("1"))
	v, ok, _ := s.Get([]byte("a"))
	if !ok || string(v) != "1" {
		t.Fatalf("expected a=1, got %q ok=%v", v, ok)
	}
	_ = s.Delete([]byte("a"))
	if _, ok, _ := s.Get([]byte("a")); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestScanOrdering(t *testing.T) {
	s := New()
	for _, k := range []string{"c", "a", "b"} {
		_ = s.Set([]byte(k), []byte(k))
	}
	it, err := s.Scan(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []string
	for it.Next() {
		got = append(got, string(it.Key()))
	}
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestScanPrefix(t *testing.T) {
	s := New()
	for _, k := range []string{"ab", "abc", "abx", "b"} {
		_ = s.Set([]byte(k), []byte(k))
	}
	it, err := s.ScanPrefix([]byte("ab"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []string
	for it.Next() {
		got = append(got, string(it.Key()))
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %v", got)
	}
}

func TestScanRange(t *testing.T) {
	s := New()
	for _, k := range []string{"a", "b", "c", "d"} {
		_ = s.Set([]byte(k), []byte(k))
	}
	it, err := s.Scan([]byte("b"), []byte("d"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []string
	for it.Next() {
		got = append(got, string(it.Key()))
	}
	want := []string{"b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
