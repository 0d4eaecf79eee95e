package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/iTrooz/footballdata/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const competitionsBody = `{
  "count": 3,
  "competitions": [
    {"id": 2021, "name": "Premier League", "code": "PL", "area": {"id": 2072, "name": "England", "code": "ENG"}},
    {"id": 2000, "name": "FIFA World Cup", "code": "WC", "area": {"id": 2267, "name": "World", "code": "INT"}},
    {"id": 2001, "name": "UEFA Champions League", "code": "CL", "area": {"id": 2077, "name": "Europe", "code": "EUR"}}
  ]
}`

func TestFilterCompetitions(t *testing.T) {
	competitions := []Competition{{Code: "PL"}, {Code: "WC"}, {Code: "CL"}}

	filtered := FilterCompetitions(competitions, map[string]bool{"WC": true, "CL": true})

	require.Len(t, filtered, 1)
	assert.Equal(t, "PL", filtered[0].Code)
}

func TestCompetitions(t *testing.T) {
	upstream := newFixtureUpstream(t, jsonHandler(competitionsBody))
	client, _ := newTestClient(t, upstream.URL, func(cfg *config.Config) {
		cfg.Competitions.Excluded = []string{"WC", "CL"}
	})

	res := client.Competitions(context.Background())
	require.True(t, res.OK(), "unexpected error: %v", res.Err)

	codes := make([]string, 0, len(res.Value))
	for _, comp := range res.Value {
		codes = append(codes, comp.Code)
	}
	assert.Equal(t, []string{"PL"}, codes)
	assert.Equal(t, "England", res.Value[0].Area.Name)
}

func TestCompetitionsErrorPassesThrough(t *testing.T) {
	upstream := newFixtureUpstream(t, statusHandler(http.StatusServiceUnavailable))
	client, _ := newTestClient(t, upstream.URL)

	res := client.Competitions(context.Background())
	require.False(t, res.OK())
	assert.Equal(t, KindHTTPStatus, res.Err.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, res.Err.StatusCode)
	assert.Nil(t, res.Value)
}

func TestCompetitionsEmptyIsNotAnError(t *testing.T) {
	upstream := newFixtureUpstream(t, jsonHandler(`{"count":0,"competitions":[]}`))
	client, _ := newTestClient(t, upstream.URL)

	res := client.Competitions(context.Background())
	require.True(t, res.OK())
	assert.Empty(t, res.Value)
}

func TestStandings(t *testing.T) {
	upstream := newFixtureUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/competitions/PL/standings", r.URL.Path)
		jsonHandler(`{
		  "competition": {"id": 2021, "code": "PL", "name": "Premier League"},
		  "season": {"id": 2287, "startDate": "2024-08-16", "endDate": "2025-05-25", "currentMatchday": 12},
		  "standings": [
		    {"stage": "REGULAR_SEASON", "type": "HOME", "table": []},
		    {"stage": "REGULAR_SEASON", "type": "TOTAL", "table": [
		      {"position": 1, "team": {"id": 64, "name": "Liverpool FC", "tla": "LIV", "crest": "https://crests.football-data.org/64.png"},
		       "playedGames": 12, "won": 10, "draw": 1, "lost": 1, "points": 31, "goalsFor": 24, "goalsAgainst": 6, "goalDifference": 18}
		    ]}
		  ]
		}`)(w, r)
	})
	client, _ := newTestClient(t, upstream.URL)

	res := client.Standings(context.Background(), "PL")
	require.True(t, res.OK(), "unexpected error: %v", res.Err)

	total := res.Value.Total()
	require.Len(t, total, 1)
	assert.Equal(t, "Liverpool FC", total[0].Team.Name)
	assert.Equal(t, 31, total[0].Points)
	assert.Equal(t, 12, res.Value.Season.CurrentMatchday)
}

func TestStandingsUnexpectedShape(t *testing.T) {
	upstream := newFixtureUpstream(t, jsonHandler(`{"standings": "nope"}`))
	client, _ := newTestClient(t, upstream.URL)

	res := client.Standings(context.Background(), "PL")
	require.False(t, res.OK())
	assert.Equal(t, KindInvalidResponse, res.Err.Kind)
}

func TestMatches(t *testing.T) {
	upstream := newFixtureUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/competitions/SA/matches", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("matchday"))
		jsonHandler(`{"matches": [{
		  "id": 497410, "utcDate": "2024-10-05T13:00:00Z", "status": "FINISHED", "matchday": 7,
		  "homeTeam": {"id": 98, "name": "AC Milan"}, "awayTeam": {"id": 99, "name": "ACF Fiorentina"},
		  "score": {"winner": "AWAY_TEAM", "fullTime": {"home": 1, "away": 2}, "halfTime": {"home": null, "away": null}}
		}]}`)(w, r)
	})
	client, _ := newTestClient(t, upstream.URL)

	res := client.Matches(context.Background(), "SA", 7)
	require.True(t, res.OK(), "unexpected error: %v", res.Err)
	require.Len(t, res.Value.Matches, 1)

	match := res.Value.Matches[0]
	assert.Equal(t, time.Date(2024, 10, 5, 13, 0, 0, 0, time.UTC), match.UTCDate.UTC())
	require.NotNil(t, match.Score.FullTime.Away)
	assert.Equal(t, 2, *match.Score.FullTime.Away)
	assert.Nil(t, match.Score.HalfTime.Home)
}

func TestMatchesWithoutMatchday(t *testing.T) {
	upstream := newFixtureUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		jsonHandler(`{"matches": []}`)(w, r)
	})
	client, _ := newTestClient(t, upstream.URL)

	res := client.Matches(context.Background(), "SA", 0)
	require.True(t, res.OK())
}

func TestScorers(t *testing.T) {
	upstream := newFixtureUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/competitions/BL1/scorers", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		jsonHandler(`{"count": 1, "scorers": [
		  {"player": {"id": 1, "name": "Harry Kane"}, "team": {"id": 5, "name": "FC Bayern München"},
		   "playedMatches": 10, "goals": 14, "assists": null, "penalties": 3}
		]}`)(w, r)
	})
	client, _ := newTestClient(t, upstream.URL)

	res := client.Scorers(context.Background(), "BL1", 5)
	require.True(t, res.OK(), "unexpected error: %v", res.Err)
	require.Len(t, res.Value.Scorers, 1)
	assert.Equal(t, 14, res.Value.Scorers[0].Goals)
	assert.Nil(t, res.Value.Scorers[0].Assists)
}

func TestTeamMatches(t *testing.T) {
	upstream := newFixtureUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/teams/86/matches", r.URL.Path)
		assert.Equal(t, "SCHEDULED", r.URL.Query().Get("status"))
		jsonHandler(`{"matches": []}`)(w, r)
	})
	client, _ := newTestClient(t, upstream.URL)

	res := client.TeamMatches(context.Background(), 86, "SCHEDULED")
	require.True(t, res.OK())
	assert.Empty(t, res.Value.Matches)
}

func TestMatch(t *testing.T) {
	upstream := newFixtureUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/matches/330299", r.URL.Path)
		jsonHandler(`{"id": 330299, "utcDate": "2024-10-05T13:00:00Z", "status": "FINISHED",
		  "referees": [{"id": 1, "name": "Michael Oliver", "type": "REFEREE"}]}`)(w, r)
	})
	client, _ := newTestClient(t, upstream.URL)

	res := client.Match(context.Background(), 330299)
	require.True(t, res.OK())
	assert.Equal(t, 330299, res.Value.ID)
	require.Len(t, res.Value.Referees, 1)
	assert.Equal(t, "Michael Oliver", res.Value.Referees[0].Name)
}

func TestMatchWindow(t *testing.T) {
	now := time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)

	from, to := MatchWindow(now, 3)
	assert.Equal(t, "2024-02-27", from.Format(dateLayout))
	assert.Equal(t, "2024-03-04", to.Format(dateLayout))
}

func TestMatchesAroundToday(t *testing.T) {
	upstream := newFixtureUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/matches", r.URL.Path)
		assert.Equal(t, "2024-12-29", r.URL.Query().Get("dateFrom"))
		assert.Equal(t, "2025-01-04", r.URL.Query().Get("dateTo"))
		jsonHandler(`{"matches": []}`)(w, r)
	})
	client, _ := newTestClient(t, upstream.URL)
	client.now = func() time.Time { return time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC) }

	res := client.MatchesAroundToday(context.Background())
	require.True(t, res.OK(), "unexpected error: %v", res.Err)
	assert.EqualValues(t, 1, upstream.calls.Load())
}
