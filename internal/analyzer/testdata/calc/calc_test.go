package calc

import "testing"

func TestAdd(t *testing.T) {
	c := &Calculator{}
	if got := c.Add(1, 2); got != 3 {
		t.Fatalf("Add = %d", got)
	}
}

func TestHelper(t *testing.T) {
	if got := helperB(1); got != 2 {
		t.Fatalf("helperB = %d", got)
	}
}

func TestApply(t *testing.T) {
	c := &Calculator{}
	t.Run("multiply", func(t *testing.T) {
		if got := apply(c.Multiply, 2, 3); got != 6 {
			t.Fatalf("apply = %d", got)
		}
	})
}

func TestSum(t *testing.T) {
	if got := Sum(1, 2, 3); got != 6 {
		t.Fatalf("Sum = %d", got)
	}
}
