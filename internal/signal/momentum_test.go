package signal

import (
	"math"
	"testing"

	"kisquant/internal/domain"
)

// constWindow returns n latest-first bars with the given constant close.
func constWindow(n int, close int64) []domain.Bar {
	bars := make([]domain.Bar, n)
	for i := range bars {
		bars[i] = domain.Bar{Date: 20230101 + n - i, Close: close}
	}
	return bars
}

func TestMomentumInsufficientHistory(t *testing.T) {
	// Unavailable iff len(window) <= horizon.
	for _, n := range []int{0, 5, 240} {
		_, ok, err := Momentum(constWindow(n, 100), 1, 240)
		if err != nil {
			t.Fatalf("Momentum with %d bars: %v", n, err)
		}
		if ok {
			t.Errorf("Momentum with %d bars reported ok, want unavailable", n)
		}
	}

	v, ok, err := Momentum(constWindow(241, 100), 1, 240)
	if err != nil {
		t.Fatalf("Momentum with 241 bars: %v", err)
	}
	if !ok {
		t.Fatal("Momentum with 241 bars reported unavailable, want ok")
	}
	if v != 0 {
		t.Errorf("constant-price momentum = %v, want 0", v)
	}
}

func TestMomentumConstantPriceIsZero(t *testing.T) {
	window := constWindow(50, 70000)
	for _, c := range []struct{ skip, horizon int }{{0, 1}, {1, 10}, {3, 49}} {
		v, ok, err := Momentum(window, c.skip, c.horizon)
		if err != nil {
			t.Fatalf("Momentum(skip=%d, horizon=%d): %v", c.skip, c.horizon, err)
		}
		if !ok {
			t.Fatalf("Momentum(skip=%d, horizon=%d) unavailable", c.skip, c.horizon)
		}
		if v != 0 {
			t.Errorf("Momentum(skip=%d, horizon=%d) = %v, want 0", c.skip, c.horizon, v)
		}
	}
}

func TestMomentumValue(t *testing.T) {
	// Latest-first: close 110 yesterday (skip=1), close 100 ten days back.
	window := constWindow(11, 100)
	window[1].Close = 110

	v, ok, err := Momentum(window, 1, 10)
	if err != nil {
		t.Fatalf("Momentum: %v", err)
	}
	if !ok {
		t.Fatal("Momentum reported unavailable")
	}
	if math.Abs(v-0.1) > 1e-12 {
		t.Errorf("Momentum = %v, want 0.1", v)
	}
}

func TestMomentumZeroDivisor(t *testing.T) {
	window := constWindow(11, 100)
	window[10].Close = 0

	_, _, err := Momentum(window, 1, 10)
	if err == nil {
		t.Fatal("Momentum with zero close at horizon should return an error")
	}
}

func TestMomentumInvalidParams(t *testing.T) {
	window := constWindow(11, 100)
	if _, _, err := Momentum(window, 5, 5); err == nil {
		t.Error("Momentum with skip == horizon should return an error")
	}
	if _, _, err := Momentum(window, -1, 10); err == nil {
		t.Error("Momentum with negative skip should return an error")
	}
}
