// ABOUTME: Deterministic two-class 2-D toy datasets (moons, circles, linear) for training runs.
// ABOUTME: Generators follow the classic interleaving-moons / concentric-circles / blob shapes.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ErrUnknown is returned for a dataset name that has no generator.
var ErrUnknown = errors.New("unknown dataset")

// Dataset is a labelled 2-D sample set.
type Dataset struct {
	Name string
	X    [][2]float64
	Y    []int
}

// Options controls generation. Zero values fall back to the per-dataset defaults.
type Options struct {
	Samples int
	Noise   float64
	Seed    int64
}

// DefaultSeed keeps runs reproducible across requests.
const DefaultSeed = 42

type generator struct {
	noise float64
	gen   func(n int, noise float64, rng *rand.Rand) ([][2]float64, []int)
}

var generators = map[string]generator{
	"moons":   {noise: 0.25, gen: moons},
	"circles": {noise: 0.2, gen: circles},
	"linear":  {noise: 1.0, gen: linear},
}

// Names returns the available dataset names, sorted.
func Names() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known reports whether name has a generator.
func Known(name string) bool {
	_, ok := generators[name]
	return ok
}

// Generate builds the named dataset. Output is identical for identical name and options.
func Generate(name string, opts Options) (Dataset, error) {
	g, ok := generators[name]
	if !ok {
		return Dataset{}, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	if opts.Samples <= 0 {
		opts.Samples = 100
	}
	if opts.Noise <= 0 {
		opts.Noise = g.noise
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	x, y := g.gen(opts.Samples, opts.Noise, rng)
	shuffle(rng, x, y)
	return Dataset{Name: name, X: x, Y: y}, nil
}

// moons draws two interleaving half circles.
func moons(n int, noise float64, rng *rand.Rand) ([][2]float64, []int) {
	nOuter := n / 2
	nInner := n - nOuter
	x := make([][2]float64, 0, n)
	y := make([]int, 0, n)

	for _, t := range linspace(0, math.Pi, nOuter, true) {
		x = append(x, [2]float64{math.Cos(t), math.Sin(t)})
		y = append(y, 0)
	}
	for _, t := range linspace(0, math.Pi, nInner, true) {
		x = append(x, [2]float64{1 - math.Cos(t), 1 - math.Sin(t) - 0.5})
		y = append(y, 1)
	}
	jitter(rng, x, noise)
	return x, y
}

// circles draws a large circle containing a smaller one scaled by 0.5.
func circles(n int, noise float64, rng *rand.Rand) ([][2]float64, []int) {
	const factor = 0.5
	nOuter := n / 2
	nInner := n - nOuter
	x := make([][2]float64, 0, n)
	y := make([]int, 0, n)

	for _, t := range linspace(0, 2*math.Pi, nOuter, false) {
		x = append(x, [2]float64{math.Cos(t), math.Sin(t)})
		y = append(y, 0)
	}
	for _, t := range linspace(0, 2*math.Pi, nInner, false) {
		x = append(x, [2]float64{factor * math.Cos(t), factor * math.Sin(t)})
		y = append(y, 1)
	}
	jitter(rng, x, noise)
	return x, y
}

// linear draws two Gaussian blobs that a single oblique boundary mostly separates.
// noise is the blob standard deviation, scaled to keep points near [-2, 2].
func linear(n int, noise float64, rng *rand.Rand) ([][2]float64, []int) {
	centers := [2][2]float64{{-0.8, -0.6}, {0.8, 0.6}}
	std := 0.45 * noise
	x := make([][2]float64, 0, n)
	y := make([]int, 0, n)
	for i := 0; i < n; i++ {
		c := i % 2
		x = append(x, [2]float64{
			centers[c][0] + rng.NormFloat64()*std,
			centers[c][1] + rng.NormFloat64()*std,
		})
		y = append(y, c)
	}
	return x, y
}

// linspace returns n evenly spaced values from start to stop, including stop when
// endpoint is set.
func linspace(start, stop float64, n int, endpoint bool) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	div := float64(n)
	if endpoint {
		div = float64(n - 1)
	}
	step := (stop - start) / div
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func jitter(rng *rand.Rand, x [][2]float64, noise float64) {
	for i := range x {
		x[i][0] += rng.NormFloat64() * noise
		x[i][1] += rng.NormFloat64() * noise
	}
}

func shuffle(rng *rand.Rand, x [][2]float64, y []int) {
	rng.Shuffle(len(x), func(i, j int) {
		x[i], x[j] = x[j], x[i]
		y[i], y[j] = y[j], y[i]
	})
}
