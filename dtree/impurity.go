// ABOUTME: Split-quality criteria (Gini impurity and Shannon entropy) over per-class counts.
// ABOUTME: ParseCriterion maps the user-facing identifier to a Criterion value.
package dtree

import (
	"fmt"
	"math"
	"strings"
)

// Criterion selects the impurity measure used to score nodes and splits.
type Criterion string

const (
	CriterionGini    Criterion = "gini"
	CriterionEntropy Criterion = "entropy"
)

// Criteria lists the supported criteria in display order.
func Criteria() []Criterion {
	return []Criterion{CriterionGini, CriterionEntropy}
}

// ParseCriterion normalizes and validates a criterion identifier.
func ParseCriterion(s string) (Criterion, error) {
	switch c := Criterion(strings.ToLower(strings.TrimSpace(s))); c {
	case CriterionGini, CriterionEntropy:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown criterion %q", ErrInvalidParams, s)
	}
}

// Title returns the criterion name for chart labels.
func (c Criterion) Title() string {
	switch c {
	case CriterionEntropy:
		return "Entropy"
	default:
		return "Gini"
	}
}

// Impurity scores counts with the criterion.
func (c Criterion) Impurity(counts []int) float64 {
	if c == CriterionEntropy {
		return Entropy(counts)
	}
	return Gini(counts)
}

// Gini returns 1 - sum(p_i^2). An empty count set scores 0.
func Gini(counts []int) float64 {
	total := sum(counts)
	if total == 0 {
		return 0
	}
	g := 1.0
	for _, n := range counts {
		p := float64(n) / float64(total)
		g -= p * p
	}
	return g
}

// Entropy returns -sum(p_i log2 p_i), skipping empty classes. An empty count set scores 0.
func Entropy(counts []int) float64 {
	total := sum(counts)
	if total == 0 {
		return 0
	}
	var e float64
	for _, n := range counts {
		if n == 0 {
			continue
		}
		p := float64(n) / float64(total)
		e -= p * math.Log2(p)
	}
	return e
}

func sum(counts []int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
