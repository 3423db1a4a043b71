package scoring

type Category string

const (
	Cold Category = "Cold"
	Warm Category = "Warm"
	Hot  Category = "Hot"
)

// Categories lists the bands from coldest to hottest.
var Categories = []Category{Cold, Warm, Hot}

// CategoryOf bands a score: 0-30 Cold, 31-60 Warm, 61-100 Hot. Out of range
// input is clamped first.
func CategoryOf(score int) Category {
	score = clamp(score)
	switch {
	case score >= 61:
		return Hot
	case score >= 31:
		return Warm
	default:
		return Cold
	}
}

// Range returns the inclusive score bounds of the category.
func (c Category) Range() (lo, hi int) {
	switch c {
	case Hot:
		return 61, MaxScore
	case Warm:
		return 31, 60
	default:
		return 0, 30
	}
}
