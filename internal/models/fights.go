package models

// Fight outcomes that are not a win for either side. A winner field
// holding anything else is the full name of the winning fighter.
const (
	OutcomeDraw      = "Draw"
	OutcomeNoContest = "NC"
)

// SideStats holds one fighter's raw per-fight statistics as scraped.
// Values stay strings because upstream pages frequently contain "--",
// empty cells or stray units; parsing happens at aggregation time and
// unparseable values count as zero.
type SideStats struct {
	Knockdowns         string `json:"kd"`
	SigStrikesLanded   string `json:"sig_str_landed"`
	SigStrikesAttempts string `json:"sig_str_attempted"`
	TakedownsLanded    string `json:"td_landed"`
	TakedownsAttempts  string `json:"td_attempted"`
	SubAttempts        string `json:"sub_attempts"`
	ControlTime        string `json:"ctrl_time"` // mm:ss
}

// Fight is a single historical bout as produced by the ingest layer.
// EventDate uses the "January 2, 2006" format of the source pages.
// Fights are immutable once ingested.
type Fight struct {
	EventName string `json:"event_name" validate:"required"`
	EventDate string `json:"event_date" validate:"required"`
	Fighter1  string `json:"fighter_1" validate:"required"`
	Fighter2  string `json:"fighter_2" validate:"required"`

	// Winner is a full fighter name, OutcomeDraw, OutcomeNoContest,
	// or empty for an upcoming bout.
	Winner string `json:"winner"`

	Method    string `json:"method"`
	Round     string `json:"round"`
	RoundTime string `json:"round_time"` // mm:ss of the final round

	F1 SideStats `json:"fighter_1_stats"`
	F2 SideStats `json:"fighter_2_stats"`
}

// HasDefinitiveOutcome reports whether one of the two fighters won.
// Draws, no-contests and upcoming bouts are excluded from rating
// updates and from accuracy evaluation.
func (f *Fight) HasDefinitiveOutcome() bool {
	return f.Winner == f.Fighter1 || f.Winner == f.Fighter2
}

// Involves reports whether the named fighter took part in the bout.
func (f *Fight) Involves(name string) bool {
	return f.Fighter1 == name || f.Fighter2 == name
}

// OpponentOf returns the other fighter's name, or "" when the named
// fighter did not take part.
func (f *Fight) OpponentOf(name string) string {
	switch name {
	case f.Fighter1:
		return f.Fighter2
	case f.Fighter2:
		return f.Fighter1
	}
	return ""
}

// StatsFor returns the raw stats recorded for the named fighter and
// their opponent, in that order.
func (f *Fight) StatsFor(name string) (own, opp SideStats) {
	if name == f.Fighter2 {
		return f.F2, f.F1
	}
	return f.F1, f.F2
}
