package models

import "strings"

// FighterProfile is one row of the fighter table. Physical attributes
// stay raw strings ("5' 11\"", "72 in.", "--"); numeric cleaning is a
// profile-table concern, not a storage concern. DateOfBirth uses the
// "Jan 2, 2006" format, which differs from the event-date format on
// purpose: the source site abbreviates months on fighter pages only.
type FighterProfile struct {
	FirstName   string  `json:"first_name" validate:"required"`
	LastName    string  `json:"last_name" validate:"required"`
	DateOfBirth string  `json:"dob"`
	Height      string  `json:"height_cm"`
	Reach       string  `json:"reach_in"`
	Stance      string  `json:"stance"`
	Rating      float64 `json:"rating"`
}

// FullName is the unique key joining profiles to fight records.
func (p *FighterProfile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// RatedFighter is a leaderboard row.
type RatedFighter struct {
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}
