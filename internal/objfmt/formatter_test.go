package objfmt

import (
	"bytes"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{-3, "-3"},
		{100, "100"},
		{0.5, "0.5"},
		{1.25, "1.25"},
		{0.123456, "0.123456"},
		{2.10, "2.1"},
	}
	for _, c := range cases {
		if got := FormatNumber(c.in); got != c.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDictFormatting(t *testing.T) {
	f := New()
	f.BeginDict()
	f.AddTokenPair("/Type", "/Page")
	f.AddTokenPair("/Count", 3)
	f.EndDict()
	want := "<<\n  /Type /Page\n  /Count 3\n>>"
	if got := string(f.Bytes()); got != want {
		t.Errorf("dict = %q, want %q", got, want)
	}
}

func TestNestedDictIndent(t *testing.T) {
	f := New()
	f.BeginDict()
	f.AddTokenPair("/A", 1)
	f.BeginDict()
	f.AddTokenPair("/B", 2)
	f.EndDict()
	f.EndDict()
	got := string(f.Bytes())
	if !bytes.Contains([]byte(got), []byte("    /B 2\n")) {
		t.Errorf("nested key not double-indented: %q", got)
	}
}

func TestArrayAndRefs(t *testing.T) {
	f := New()
	f.BeginArray(0)
	f.AddObjectRef(3)
	f.AddObjectRef(7)
	f.EndArray()
	want := "[3 0 R 7 0 R ]"
	if got := string(f.Bytes()); got != want {
		t.Errorf("array = %q, want %q", got, want)
	}
}

func TestAddTokenWithSlash(t *testing.T) {
	f := New()
	f.BeginArray(0)
	f.AddTokenWithSlash("Separation")
	f.AddTokenWithSlash("Gold")
	f.EndArray()
	want := "[/Separation /Gold ]"
	if got := string(f.Bytes()); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// TestStealReplay checks that recording a token sequence, stealing the
// buffer, and replaying the same sequence into the reset formatter yields
// identical bytes.
func TestStealReplay(t *testing.T) {
	record := func(f *Formatter) {
		f.BeginDict()
		f.AddTokenPair("/Length", 42)
		f.AddObjectRefPair("/Parent", 2)
		f.EndDict()
	}
	f := New()
	record(f)
	first := f.Steal()
	if f.Len() != 0 {
		t.Fatalf("Steal did not reset the buffer, %d bytes left", f.Len())
	}
	record(f)
	second := f.Steal()
	if !bytes.Equal(first, second) {
		t.Errorf("replay differs:\n%q\n%q", first, second)
	}
}

func TestMismatchedEndPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("EndDict after BeginArray should panic")
		}
	}()
	f := New()
	f.BeginArray(0)
	f.EndDict()
}
