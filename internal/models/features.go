package models

// FeatureColumns is the fixed, sorted feature column order shared by
// training and inference. Classifier input order is a correctness
// contract: a model trained with one ordering and queried with
// another silently corrupts every prediction, so the list is defined
// exactly once and never derived ad hoc.
var FeatureColumns = []string{
	"age_diff",
	"control_time_diff",
	"days_since_last_fight_diff",
	"fights_last_year_diff",
	"finish_rate_diff",
	"height_diff",
	"knockdowns_absorbed_diff",
	"ko_rate_diff",
	"rating_diff",
	"reach_diff",
	"sig_str_defense_diff",
	"sig_str_per_min_diff",
	"stance_mismatch",
	"sub_attempts_per_min_diff",
	"td_accuracy_diff",
	"td_defense_diff",
	"win_streak_diff",
}

// StanceMismatchColumn is the one symmetric feature: it is copied,
// not negated, when the mirrored training row is emitted.
const StanceMismatchColumn = "stance_mismatch"

// FightMeta identifies the source bout of a feature row.
type FightMeta struct {
	EventName string `json:"event"`
	EventDate string `json:"date"`
	Fighter1  string `json:"fighter_1"`
	Fighter2  string `json:"fighter_2"`
	Winner    string `json:"winner"`
}

// FeatureSet is the output of the feature builder: one X row and one
// label per emitted example, rows aligned with FeatureColumns.
// SkippedFights counts bouts dropped because a fighter was missing
// from the profile table; the final report surfaces this so reduced
// coverage is visible rather than silent.
type FeatureSet struct {
	Columns       []string
	X             [][]float64
	Y             []int
	Meta          []FightMeta
	SkippedFights int
}
