// ABOUTME: Tests for the toy dataset generators.
// ABOUTME: Checks sizes, class balance, determinism per seed, and unknown-name handling.
package dataset

import (
	"errors"
	"reflect"
	"testing"
)

func TestNames(t *testing.T) {
	want := []string{"circles", "linear", "moons"}
	if got := Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestGenerateShapes(t *testing.T) {
	for _, name := range Names() {
		ds, err := Generate(name, Options{})
		if err != nil {
			t.Fatalf("Generate(%s): %v", name, err)
		}
		if len(ds.X) != 100 || len(ds.Y) != 100 {
			t.Errorf("%s: got %d rows / %d labels, want 100", name, len(ds.X), len(ds.Y))
		}
		counts := map[int]int{}
		for _, c := range ds.Y {
			counts[c]++
		}
		if counts[0] != 50 || counts[1] != 50 {
			t.Errorf("%s: class counts = %v, want 50/50", name, counts)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, _ := Generate("moons", Options{Seed: 7})
	b, _ := Generate("moons", Options{Seed: 7})
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different datasets")
	}
	c, _ := Generate("moons", Options{Seed: 8})
	if reflect.DeepEqual(a.X, c.X) {
		t.Error("different seeds produced identical points")
	}
}

func TestGenerateUnknown(t *testing.T) {
	if _, err := Generate("spirals", Options{}); !errors.Is(err, ErrUnknown) {
		t.Errorf("err = %v, want ErrUnknown", err)
	}
	if Known("spirals") {
		t.Error("Known(spirals) = true")
	}
}

func TestLinspace(t *testing.T) {
	got := linspace(0, 1, 3, true)
	if !reflect.DeepEqual(got, []float64{0, 0.5, 1}) {
		t.Errorf("linspace endpoint = %v", got)
	}
	got = linspace(0, 1, 4, false)
	if !reflect.DeepEqual(got, []float64{0, 0.25, 0.5, 0.75}) {
		t.Errorf("linspace open = %v", got)
	}
}
