package mathx

import "testing"

func TestClamp(t *testing.T) {
	if got := Clamp(5, 1, 3); got != 3 {
		t.Fatalf("Clamp(5,1,3) = %d", got)
	}
	if got := Clamp(-1, 0, 10); got != 0 {
		t.Fatalf("Clamp(-1,0,10) = %d", got)
	}
	if got := Clamp(7, 0, 10); got != 7 {
		t.Fatalf("Clamp(7,0,10) = %d", got)
	}
	// Swapped bounds behave the same.
	if got := Clamp(5, 3, 1); got != 3 {
		t.Fatalf("Clamp(5,3,1) = %d", got)
	}
}

func TestBetween(t *testing.T) {
	if !Between(2, 0, 3) || Between(4, 0, 3) {
		t.Fatal("Between basic cases failed")
	}
	if !Between(0, 0, 3) || !Between(3, 0, 3) {
		t.Fatal("Between must include the bounds")
	}
	if !Between(2, 3, 0) {
		t.Fatal("Between must accept swapped bounds")
	}
}
