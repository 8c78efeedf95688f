package schedule

import (
	"strconv"

	"github.com/appetiteclub/apt"
)

// Score is the operator-tunable rating attached to a resolution kind.
type Score struct {
	Confidence     int
	Satisfaction   int
	Impact         Impact
	AutoResolvable bool
}

// Ranker maps resolution kinds to their confidence/impact/satisfaction
// scores. It externalizes the numbers so operators can retune suggestions
// without touching detection logic.
type Ranker struct {
	scores map[ResolutionKind]Score
}

func defaultScores() map[ResolutionKind]Score {
	return map[ResolutionKind]Score{
		ResolutionReassignTable: {
			Confidence:     90,
			Satisfaction:   95,
			Impact:         ImpactLow,
			AutoResolvable: true,
		},
		ResolutionSplitParty: {
			Confidence:   70,
			Satisfaction: 75,
			Impact:       ImpactModerate,
		},
		ResolutionReschedule: {
			Confidence:   80,
			Satisfaction: 70,
			Impact:       ImpactModerate,
		},
		ResolutionDistributeBookings: {
			Confidence:   60,
			Satisfaction: 80,
			Impact:       ImpactLow,
		},
	}
}

// NewRanker returns a ranker with the default score table.
func NewRanker() *Ranker {
	return &Ranker{scores: defaultScores()}
}

// NewRankerFromConfig overlays config values on the defaults. Keys follow
// "ranker.<kind>.confidence", ".satisfaction" and ".impact". Missing or
// unparsable values keep the default.
func NewRankerFromConfig(config *apt.Config) *Ranker {
	r := NewRanker()
	if config == nil {
		return r
	}

	for kind, score := range r.scores {
		prefix := "ranker." + string(kind) + "."

		if v, _ := config.GetString(prefix + "confidence"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				score.Confidence = clampPercent(n)
			}
		}
		if v, _ := config.GetString(prefix + "satisfaction"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				score.Satisfaction = clampPercent(n)
			}
		}
		if v, _ := config.GetString(prefix + "impact"); v != "" {
			switch Impact(v) {
			case ImpactLow, ImpactModerate, ImpactHigh:
				score.Impact = Impact(v)
			}
		}

		r.scores[kind] = score
	}

	return r
}

// Score returns the rating for a resolution kind. Unknown kinds get a zeroed
// score rather than a panic; callers only pass declared kinds.
func (r *Ranker) Score(kind ResolutionKind) Score {
	return r.scores[kind]
}

// SetScore replaces the rating for a kind at runtime.
func (r *Ranker) SetScore(kind ResolutionKind, score Score) {
	score.Confidence = clampPercent(score.Confidence)
	score.Satisfaction = clampPercent(score.Satisfaction)
	r.scores[kind] = score
}

func clampPercent(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
