package bdmv

import (
	"errors"
	"testing"
)

func TestReaderPrimitives(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})

	if v, err := r.U8(); err != nil || v != 0x01 {
		t.Fatalf("U8 = %v, %v", v, err)
	}
	if v, err := r.U16(); err != nil || v != 0x0203 {
		t.Fatalf("U16 = %#x, %v", v, err)
	}
	if v, err := r.U32(); err != nil || v != 0x04050607 {
		t.Fatalf("U32 = %#x, %v", v, err)
	}
	if r.Tell() != 7 {
		t.Fatalf("Tell = %d, want 7", r.Tell())
	}
	if r.Remaining() != 1 {
		t.Fatalf("Remaining = %d, want 1", r.Remaining())
	}
}

func TestReaderBoundsErrorDoesNotAdvance(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	if err := r.Skip(1); err != nil {
		t.Fatalf("Skip: %v", err)
	}

	_, err := r.U32()
	var bounds *BoundsError
	if !errors.As(err, &bounds) {
		t.Fatalf("U32 error = %v, want BoundsError", err)
	}
	if bounds.Offset != 1 || bounds.Want != 4 || bounds.Remaining != 1 {
		t.Fatalf("BoundsError = %+v", bounds)
	}
	if r.Tell() != 1 {
		t.Fatalf("cursor advanced to %d after failed read", r.Tell())
	}
}

func TestReaderSlice(t *testing.T) {
	data := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	r := NewReader(data)

	sub, err := r.Slice(1, 2)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if got, _ := sub.U8(); got != 0xBB {
		t.Fatalf("sub U8 = %#x, want 0xBB", got)
	}
	if sub.Len() != 2 {
		t.Fatalf("sub Len = %d, want 2", sub.Len())
	}
	if _, err := sub.U16(); err == nil {
		t.Fatal("expected bounds error past sub-slice end")
	}
	// The parent cursor is unaffected by sub-reader activity.
	if r.Tell() != 0 {
		t.Fatalf("parent Tell = %d, want 0", r.Tell())
	}

	if _, err := r.Slice(3, 5); err == nil {
		t.Fatal("expected bounds error for oversized slice")
	}
}

func TestReaderSeekAndASCII(t *testing.T) {
	r := NewReader([]byte{'M', 'P', 'L', 'S', '0', '2', '0', '0', 0x00})
	magic, err := r.ASCII(4)
	if err != nil || magic != "MPLS" {
		t.Fatalf("ASCII = %q, %v", magic, err)
	}
	if err := r.Seek(8); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	// NUL bytes are dropped from decoded strings.
	s, err := r.ASCII(1)
	if err != nil || s != "" {
		t.Fatalf("ASCII over NUL = %q, %v", s, err)
	}
	if err := r.Seek(42); err == nil {
		t.Fatal("expected error seeking past end")
	}
}
