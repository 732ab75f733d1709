package tensor

import (
	"errors"
	"testing"
)

func assertEqualShape(t *testing.T, expected, actual Shape, msg string) {
	t.Helper()
	if !expected.Equal(actual) {
		t.Errorf("%s: expected shape %v, got %v", msg, expected, actual)
	}
}

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape    Shape
		expected int
	}{
		{Shape{}, 1},
		{Shape{5}, 5},
		{Shape{0}, 0},
		{Shape{2, 3}, 6},
		{Shape{2, 0, 4}, 0},
	}

	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.expected {
			t.Errorf("Shape%v.NumElements() = %d, want %d", tt.shape, got, tt.expected)
		}
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{0}).Validate(); err != nil {
		t.Errorf("zero-length dimension should be valid, got %v", err)
	}
	if err := (Shape{3, -1}).Validate(); err == nil {
		t.Error("negative dimension should be rejected")
	}
}

func TestShapeClone(t *testing.T) {
	s := Shape{2, 3}
	c := s.Clone()
	c[0] = 9
	if s[0] != 2 {
		t.Errorf("Clone shares memory with original: %v", s)
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Shape
		expected  Shape
		broadcast bool
		wantErr   bool
	}{
		{"equal", Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false, false},
		{"stretch trailing", Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"stretch leading", Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"scalar", Shape{}, Shape{4}, Shape{4}, true, false},
		{"one to zero", Shape{1}, Shape{0}, Shape{0}, true, false},
		{"incompatible", Shape{3, 4}, Shape{3, 5}, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, broadcast, err := BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				if !errors.Is(err, ErrShapeMismatch) {
					t.Fatalf("expected ErrShapeMismatch, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertEqualShape(t, tt.expected, result, "BroadcastShapes")
			if broadcast != tt.broadcast {
				t.Errorf("needsBroadcast = %v, want %v", broadcast, tt.broadcast)
			}
		})
	}
}

func TestBroadcastTo(t *testing.T) {
	tests := []struct {
		name    string
		src     Shape
		dst     Shape
		wantErr bool
	}{
		{"scalar to vector", Shape{}, Shape{4}, false},
		{"scalar to empty", Shape{}, Shape{0}, false},
		{"one to empty", Shape{1}, Shape{0}, false},
		{"empty to empty", Shape{0}, Shape{0}, false},
		{"same", Shape{3}, Shape{3}, false},
		{"wrong length", Shape{3}, Shape{4}, true},
		{"vector to scalar", Shape{4}, Shape{}, true},
		{"negative target", Shape{}, Shape{-1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := BroadcastTo(tt.src, tt.dst)
			if tt.wantErr && !errors.Is(err, ErrShapeMismatch) {
				t.Errorf("BroadcastTo(%v, %v) = %v, want ErrShapeMismatch", tt.src, tt.dst, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("BroadcastTo(%v, %v) unexpected error: %v", tt.src, tt.dst, err)
			}
		})
	}
}

func TestAsShape(t *testing.T) {
	tests := []struct {
		in       any
		expected Shape
	}{
		{Shape{2, 3}, Shape{2, 3}},
		{[]int{4}, Shape{4}},
		{5, Shape{5}},
	}
	for _, tt := range tests {
		got, err := AsShape(tt.in)
		if err != nil {
			t.Fatalf("AsShape(%v) unexpected error: %v", tt.in, err)
		}
		assertEqualShape(t, tt.expected, got, "AsShape")
	}

	if _, err := AsShape("3"); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("AsShape(string) = %v, want ErrShapeMismatch", err)
	}
}
