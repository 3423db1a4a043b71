package scoring

// Factor is one triggered rule and what it contributed.
type Factor struct {
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// Breakdown maps rule labels to points. Rules that did not fire are absent.
// The raw entries can add up to more than MaxScore (at most 125); Total
// applies the cap.
type Breakdown map[string]int

// Total sums the breakdown with the same cap Score applies.
func (b Breakdown) Total() int {
	sum := 0
	for _, points := range b {
		sum += points
	}
	return clamp(sum)
}

// Total sums factors with the same cap Score applies.
func Total(factors []Factor) int {
	sum := 0
	for _, f := range factors {
		sum += f.Points
	}
	return clamp(sum)
}
