package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/iTrooz/footballdata/internal/cache/doccache"
)

const dateLayout = "2006-01-02"

// Competitions lists the competitions available to the API key, without the excluded ones
func (c *Client) Competitions(ctx context.Context) Result[[]Competition] {
	list := fetchAs[CompetitionList](ctx, c, "/competitions", nil)
	return mapValue(list, func(l CompetitionList) []Competition {
		return FilterCompetitions(l.Competitions, c.excluded)
	})
}

// FilterCompetitions drops competitions whose code is in excluded, keeping order
func FilterCompetitions(competitions []Competition, excluded map[string]bool) []Competition {
	filtered := make([]Competition, 0, len(competitions))
	for _, comp := range competitions {
		if excluded[comp.Code] {
			continue
		}
		filtered = append(filtered, comp)
	}
	return filtered
}

// Standings returns the standings of a competition, by code or numeric id
func (c *Client) Standings(ctx context.Context, competition string) Result[Standings] {
	endpoint := fmt.Sprintf("/competitions/%s/standings", url.PathEscape(competition))
	return fetchAs[Standings](ctx, c, endpoint, nil)
}

// Matches returns the matches of a competition, restricted to one matchday when matchday > 0
func (c *Client) Matches(ctx context.Context, competition string, matchday int) Result[MatchList] {
	endpoint := fmt.Sprintf("/competitions/%s/matches", url.PathEscape(competition))
	params := doccache.Params{}
	if matchday > 0 {
		params["matchday"] = strconv.Itoa(matchday)
	}
	return fetchAs[MatchList](ctx, c, endpoint, params)
}

// Scorers returns the top limit scorers of a competition
func (c *Client) Scorers(ctx context.Context, competition string, limit int) Result[ScorerList] {
	endpoint := fmt.Sprintf("/competitions/%s/scorers", url.PathEscape(competition))
	params := doccache.Params{"limit": strconv.Itoa(limit)}
	return fetchAs[ScorerList](ctx, c, endpoint, params)
}

// TeamMatches returns the matches of a team, optionally filtered by status (e.g. FINISHED)
func (c *Client) TeamMatches(ctx context.Context, teamID int, status string) Result[MatchList] {
	endpoint := fmt.Sprintf("/teams/%d/matches", teamID)
	params := doccache.Params{}
	if status != "" {
		params["status"] = status
	}
	return fetchAs[MatchList](ctx, c, endpoint, params)
}

// Match returns the details of a single match
func (c *Client) Match(ctx context.Context, matchID int) Result[Match] {
	endpoint := fmt.Sprintf("/matches/%d", matchID)
	return fetchAs[Match](ctx, c, endpoint, nil)
}

// MatchesBetween returns matches of all available competitions between two dates, inclusive
func (c *Client) MatchesBetween(ctx context.Context, from, to time.Time) Result[MatchList] {
	params := doccache.Params{
		"dateFrom": from.Format(dateLayout),
		"dateTo":   to.Format(dateLayout),
	}
	return fetchAs[MatchList](ctx, c, "/matches", params)
}

// MatchesAroundToday returns matches from a few days before today to a few days after
func (c *Client) MatchesAroundToday(ctx context.Context) Result[MatchList] {
	from, to := MatchWindow(c.now(), c.matchWindowDays)
	return c.MatchesBetween(ctx, from, to)
}

// MatchWindow returns the dates days before and days after now
func MatchWindow(now time.Time, days int) (time.Time, time.Time) {
	return now.AddDate(0, 0, -days), now.AddDate(0, 0, days)
}
