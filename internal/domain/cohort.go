package domain

// Cohort is a named rank range of the asset universe used to stage a run.
// MinRank is inclusive, MaxRank exclusive; zero means unbounded.
type Cohort struct {
	Name    string `yaml:"name"`
	MinRank int    `yaml:"min_rank"`
	MaxRank int    `yaml:"max_rank"`
}

// Unbounded reports whether the cohort has no rank limits.
func (c Cohort) Unbounded() bool {
	return c.MinRank == 0 && c.MaxRank == 0
}

// Contains reports whether a rank falls into the cohort.
func (c Cohort) Contains(rank int) bool {
	if c.MinRank > 0 && rank < c.MinRank {
		return false
	}
	if c.MaxRank > 0 && rank >= c.MaxRank {
		return false
	}
	return true
}
