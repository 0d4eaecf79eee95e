package api

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const goldenBootConcurrency = 4

// RankedScorer is a scorer weighted by the strength of its competition
type RankedScorer struct {
	Scorer
	Competition string  `json:"competition"`
	Coefficient float64 `json:"coefficient"`
	Points      float64 `json:"points"`
}

// CompetitionScorers are the scorers of one competition with its coefficient
type CompetitionScorers struct {
	Code        string
	Coefficient float64
	Scorers     []Scorer
}

// RankScorers pools all scorers, scores them as goals × coefficient and keeps
// the topN best. Equal points keep their pooled order.
func RankScorers(pools []CompetitionScorers, topN int) []RankedScorer {
	var ranked []RankedScorer
	for _, pool := range pools {
		for _, scorer := range pool.Scorers {
			ranked = append(ranked, RankedScorer{
				Scorer:      scorer,
				Competition: pool.Code,
				Coefficient: pool.Coefficient,
				Points:      float64(scorer.Goals) * pool.Coefficient,
			})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Points > ranked[j].Points
	})

	if topN >= 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// GoldenBoot ranks the best scorers across the configured competitions.
// A competition that cannot be fetched contributes no scorers; the result is
// an error only when none could be fetched.
func (c *Client) GoldenBoot(ctx context.Context) Result[[]RankedScorer] {
	pools := make([]CompetitionScorers, len(c.coefficients))
	results := make([]Result[ScorerList], len(c.coefficients))

	var g errgroup.Group
	g.SetLimit(goldenBootConcurrency)
	for i, coef := range c.coefficients {
		g.Go(func() error {
			results[i] = c.Scorers(ctx, coef.Code, c.scorersPerCompetition)
			return nil
		})
	}
	_ = g.Wait()

	var firstErr *Error
	origin := OriginNone
	var fallback *Error
	for i, coef := range c.coefficients {
		res := results[i]
		pools[i] = CompetitionScorers{Code: coef.Code, Coefficient: coef.Value}
		if !res.OK() {
			logrus.Warnf("Skipping %s in golden boot ranking: %s", coef.Code, res.Err.Message)
			if firstErr == nil {
				firstErr = res.Err
			}
			continue
		}
		pools[i].Scorers = res.Value.Scorers
		origin, fallback = combineOrigin(origin, fallback, res)
	}

	if origin == OriginNone && firstErr != nil {
		return failed[[]RankedScorer](&Error{
			Kind:       firstErr.Kind,
			StatusCode: firstErr.StatusCode,
			RetryAfter: firstErr.RetryAfter,
			Message:    "no scorers available for any competition: " + firstErr.Message,
			Cause:      firstErr,
		})
	}

	return Result[[]RankedScorer]{
		Value:    RankScorers(pools, c.goldenBootTop),
		Origin:   origin,
		Fallback: fallback,
	}
}

// combineOrigin keeps the least fresh origin of an aggregate
func combineOrigin[T any](origin Origin, fallback *Error, res Result[T]) (Origin, *Error) {
	switch {
	case res.Origin == OriginStale:
		if fallback == nil {
			fallback = res.Fallback
		}
		return OriginStale, fallback
	case origin == OriginStale:
		return origin, fallback
	case res.Origin == OriginNetwork || origin == OriginNetwork:
		return OriginNetwork, fallback
	default:
		return res.Origin, fallback
	}
}
