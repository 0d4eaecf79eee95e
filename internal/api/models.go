package api

import "time"

type Area struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
	Flag string `json:"flag,omitempty"`
}

type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
	TLA       string `json:"tla,omitempty"`
	Crest     string `json:"crest,omitempty"`
}

type Season struct {
	ID              int    `json:"id"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	CurrentMatchday int    `json:"currentMatchday,omitempty"`
	Winner          *Team  `json:"winner,omitempty"`
}

type Competition struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Code          string  `json:"code"`
	Type          string  `json:"type,omitempty"`
	Emblem        string  `json:"emblem,omitempty"`
	Area          Area    `json:"area"`
	CurrentSeason *Season `json:"currentSeason,omitempty"`
}

type CompetitionList struct {
	Count        int           `json:"count"`
	Competitions []Competition `json:"competitions"`
}

// TableRow is one team's line in a standings table
type TableRow struct {
	Position       int    `json:"position"`
	Team           Team   `json:"team"`
	PlayedGames    int    `json:"playedGames"`
	Form           string `json:"form,omitempty"`
	Won            int    `json:"won"`
	Draw           int    `json:"draw"`
	Lost           int    `json:"lost"`
	Points         int    `json:"points"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
}

type StandingTable struct {
	Stage string     `json:"stage"`
	Type  string     `json:"type"`
	Group string     `json:"group,omitempty"`
	Table []TableRow `json:"table"`
}

type Standings struct {
	Competition Competition     `json:"competition"`
	Season      Season          `json:"season"`
	Standings   []StandingTable `json:"standings"`
}

// Total returns the overall table, falling back to the first table available
func (s Standings) Total() []TableRow {
	for _, table := range s.Standings {
		if table.Type == "TOTAL" {
			return table.Table
		}
	}
	if len(s.Standings) > 0 {
		return s.Standings[0].Table
	}
	return nil
}

// Goals is a score line. Values are nil until the match has started.
type Goals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type Score struct {
	Winner   string `json:"winner,omitempty"`
	Duration string `json:"duration,omitempty"`
	FullTime Goals  `json:"fullTime"`
	HalfTime Goals  `json:"halfTime"`
}

type Referee struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Nationality string `json:"nationality,omitempty"`
}

type Match struct {
	ID          int         `json:"id"`
	UTCDate     time.Time   `json:"utcDate"`
	Status      string      `json:"status"`
	Matchday    int         `json:"matchday,omitempty"`
	Stage       string      `json:"stage,omitempty"`
	Group       string      `json:"group,omitempty"`
	Venue       string      `json:"venue,omitempty"`
	Competition Competition `json:"competition"`
	Season      Season      `json:"season"`
	HomeTeam    Team        `json:"homeTeam"`
	AwayTeam    Team        `json:"awayTeam"`
	Score       Score       `json:"score"`
	Referees    []Referee   `json:"referees,omitempty"`
}

type MatchList struct {
	Competition *Competition `json:"competition,omitempty"`
	Matches     []Match      `json:"matches"`
}

type Player struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Nationality string `json:"nationality,omitempty"`
	Position    string `json:"position,omitempty"`
}

type Scorer struct {
	Player        Player `json:"player"`
	Team          Team   `json:"team"`
	PlayedMatches int    `json:"playedMatches"`
	Goals         int    `json:"goals"`
	Assists       *int   `json:"assists"`
	Penalties     *int   `json:"penalties"`
}

type ScorerList struct {
	Count       int         `json:"count"`
	Competition Competition `json:"competition"`
	Season      Season      `json:"season"`
	Scorers     []Scorer    `json:"scorers"`
}
