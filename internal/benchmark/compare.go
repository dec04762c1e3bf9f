package benchmark

import "fmt"

// Comparison holds the change between two results of the same name.
type Comparison struct {
	Name        string
	BestDiff    float64 // Percentage change
	PerCallDiff float64 // Percentage change
	Prev        Result
	Curr        Result
}

// Compare returns a comparison for every result present in both runs, in the
// order of curr.
func Compare(prev, curr Run) []Comparison {
	prevMap := make(map[string]Result)
	for _, r := range prev.Results {
		prevMap[r.Name] = r
	}

	var comparisons []Comparison
	for _, c := range curr.Results {
		p, ok := prevMap[c.Name]
		if !ok {
			continue
		}
		comp := Comparison{Name: c.Name, Prev: p, Curr: c}
		if p.Best > 0 {
			comp.BestDiff = float64(c.Best-p.Best) / float64(p.Best) * 100
		}
		if p.PerCall > 0 {
			comp.PerCallDiff = float64(c.PerCall-p.PerCall) / float64(p.PerCall) * 100
		}
		comparisons = append(comparisons, comp)
	}
	return comparisons
}

// Regressions returns the comparisons whose per-call time grew by more than
// threshold percent.
func Regressions(comps []Comparison, threshold float64) []Comparison {
	var out []Comparison
	for _, c := range comps {
		if c.PerCallDiff > threshold {
			out = append(out, c)
		}
	}
	return out
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s: %+.2f%% per call", c.Name, c.PerCallDiff)
}
