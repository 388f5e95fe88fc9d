package middleware

import "testing"

type userID string
type attempt int

func TestExtensions_InsertGet(t *testing.T) {
	ext := NewExtensions()

	if _, had := Insert(ext, userID("u-1")); had {
		t.Error("expected no previous value")
	}
	prev, had := Insert(ext, userID("u-2"))
	if !had || prev != "u-1" {
		t.Errorf("expected previous u-1, got %q (had=%v)", prev, had)
	}

	got, ok := Get[userID](ext)
	if !ok || got != "u-2" {
		t.Errorf("expected u-2, got %q", got)
	}
	if _, ok := Get[attempt](ext); ok {
		t.Error("expected attempt to be absent")
	}
}

func TestExtensions_KeyedByType(t *testing.T) {
	ext := NewExtensions()
	Insert(ext, userID("u-1"))
	Insert(ext, attempt(3))
	Insert(ext, "plain string")

	if ext.Len() != 3 {
		t.Fatalf("expected 3 values, got %d", ext.Len())
	}
	if n, _ := Get[attempt](ext); n != 3 {
		t.Errorf("expected attempt 3, got %d", n)
	}
	if s, _ := Get[string](ext); s != "plain string" {
		t.Errorf("expected plain string, got %q", s)
	}
}

func TestExtensions_Remove(t *testing.T) {
	ext := NewExtensions()
	Insert(ext, attempt(1))

	v, ok := Remove[attempt](ext)
	if !ok || v != 1 {
		t.Errorf("expected removed value 1, got %d", v)
	}
	if Contains[attempt](ext) {
		t.Error("expected attempt to be gone")
	}
	if _, ok := Remove[attempt](ext); ok {
		t.Error("expected second remove to report absence")
	}
}

func TestExtensions_ZeroValueAndNil(t *testing.T) {
	var ext Extensions
	Insert(&ext, attempt(1))
	if !Contains[attempt](&ext) {
		t.Error("expected zero value Extensions to accept inserts")
	}

	var nilExt *Extensions
	if _, ok := Get[attempt](nilExt); ok {
		t.Error("expected nil Extensions to be empty")
	}
	if nilExt.Len() != 0 {
		t.Error("expected nil Extensions to have len 0")
	}
	nilExt.Clear()
}

func TestExtensions_CloneAndClear(t *testing.T) {
	ext := NewExtensions()
	Insert(ext, userID("u-1"))

	c := ext.Clone()
	Insert(c, userID("u-2"))

	if got, _ := Get[userID](ext); got != "u-1" {
		t.Errorf("expected original untouched, got %q", got)
	}

	ext.Clear()
	if ext.Len() != 0 {
		t.Errorf("expected empty after clear, got %d", ext.Len())
	}
	if c.Len() != 1 {
		t.Errorf("expected clone to keep its value, got %d", c.Len())
	}
}
