// Package model contains the typed records passed between pipeline stages.
package model

import (
	"strings"
	"time"
)

// Site indicator values after normalization.
const (
	SiteHome    = "h"
	SiteVisitor = "v"
)

// GameTeamRecord is one team's line for one game.
type GameTeamRecord struct {
	GameID       string    // trimmed game id, e.g. "ANA202304010"
	Team         string    // team code
	Date         time.Time // calendar date of the game
	Season       int       // season stamped by the loader
	Site         string    // normalized site indicator, "h" or "v" for well-formed rows
	Win          bool      // true when the team won
	DoubleHeader int       // doubleheader game number, 0 for single games
	Order        int       // ingestion sequence across all loaded files

	RunsScored  float64 // b_r
	Hits        float64 // b_h
	HomeRuns    float64 // b_hr
	RunsAllowed float64 // p_r
	HitsAllowed float64 // p_h
	Errors      float64 // d_e

	// Raw holds every source cell aligned with the dataset's team column list.
	// Key fields (gid, date, vishome) carry their normalized text.
	Raw []string
}

// Target returns the 0/1 label for the record.
func (r *GameTeamRecord) Target() int {
	if r.Win {
		return 1
	}
	return 0
}

// PitcherGameRecord is one pitcher appearance in one game.
type PitcherGameRecord struct {
	GameID       string
	Team         string
	PitcherID    string
	Sequence     int // appearance order within the game; 1 is the starter
	Date         time.Time
	DoubleHeader int
	Order        int

	EarnedRuns  float64 // p_er
	Outs        float64 // p_ipouts
	HitsAllowed float64 // p_h
	Walks       float64 // p_w
}

// IsStarter reports whether the appearance opened the game.
func (r *PitcherGameRecord) IsStarter() bool { return r.Sequence == 1 }

// StarterKey identifies a team's starter for one game.
type StarterKey struct {
	GameID string
	Team   string
}

// StarterForm carries a starter's pre-game rates.
type StarterForm struct {
	GameID    string
	Team      string
	PitcherID string
	Order     int // ingestion sequence of the appearance
	ERA       float64
	WHIP      float64
}

// Key returns the join key used against team-game records.
func (s StarterForm) Key() StarterKey { return StarterKey{GameID: s.GameID, Team: s.Team} }

// TeamSeasonKey groups a team's games within a season.
type TeamSeasonKey struct {
	Team   string
	Season int
}

// TeamFormKey identifies one team-season-game.
type TeamFormKey struct {
	Team   string
	Season int
	GameID string
}

// TeamForm carries a team's pre-game form for one game.
type TeamForm struct {
	Team       string
	Season     int
	GameID     string
	Rolling    []float64 // aligned with the tracked stat list; NaN when no prior game has a value
	PriorWins  int
	PriorGames int
	PreWinRate float64
}

// Key returns the join key used against team-game records.
func (f TeamForm) Key() TeamFormKey {
	return TeamFormKey{Team: f.Team, Season: f.Season, GameID: f.GameID}
}

// KeyOf returns the team form key of a team-game record.
func KeyOf(r *GameTeamRecord) TeamFormKey {
	return TeamFormKey{Team: r.Team, Season: r.Season, GameID: r.GameID}
}

// ChronologicalLess orders team-game records by team, season, date,
// doubleheader number and ingestion order.
func ChronologicalLess(a, b *GameTeamRecord) bool {
	if c := strings.Compare(a.Team, b.Team); c != 0 {
		return c < 0
	}
	if a.Season != b.Season {
		return a.Season < b.Season
	}
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if a.DoubleHeader != b.DoubleHeader {
		return a.DoubleHeader < b.DoubleHeader
	}
	return a.Order < b.Order
}

// AppearanceLess orders pitcher appearances by pitcher, date,
// doubleheader number and ingestion order.
func AppearanceLess(a, b *PitcherGameRecord) bool {
	if c := strings.Compare(a.PitcherID, b.PitcherID); c != 0 {
		return c < 0
	}
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if a.DoubleHeader != b.DoubleHeader {
		return a.DoubleHeader < b.DoubleHeader
	}
	return a.Order < b.Order
}
