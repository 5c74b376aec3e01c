package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fightmetrics/predict-api/internal/models"
)

// The CSV readers exist for the offline CLI and the seeder; the API
// path ingests JSON. Columns are located by header name so exports
// with extra columns (location, weight class, totals) still load.

type headerIndex map[string]int

func indexHeader(record []string) headerIndex {
	idx := make(headerIndex, len(record))
	for i, name := range record {
		idx[strings.TrimSpace(strings.ToLower(name))] = i
	}
	return idx
}

func (h headerIndex) get(record []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// splitOf parses the "15 of 30" landed/attempted form the source site
// uses for strikes and takedowns. Anything else comes back verbatim
// as landed with an empty attempts.
func splitOf(v string) (landed, attempts string) {
	parts := strings.SplitN(v, " of ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return v, ""
}

func sideFromRecord(h headerIndex, record []string, prefix string) models.SideStats {
	var s models.SideStats
	s.Knockdowns = h.get(record, prefix+"_kd")
	s.SigStrikesLanded, s.SigStrikesAttempts = splitOf(h.get(record, prefix+"_sig_str"))
	s.TakedownsLanded, s.TakedownsAttempts = splitOf(h.get(record, prefix+"_td"))
	s.SubAttempts = h.get(record, prefix+"_sub_att")
	s.ControlTime = h.get(record, prefix+"_ctrl")
	return s
}

// ReadFightsCSV loads a fight export. The header row is required.
func ReadFightsCSV(path string) ([]models.Fight, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fights csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read fights csv header: %w", err)
	}
	h := indexHeader(header)
	for _, required := range []string{"event_name", "event_date", "fighter_1", "fighter_2"} {
		if _, ok := h[required]; !ok {
			return nil, fmt.Errorf("fights csv missing column %q", required)
		}
	}

	var fights []models.Fight
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read fights csv line %d: %w", line, err)
		}
		fights = append(fights, models.Fight{
			EventName: h.get(record, "event_name"),
			EventDate: h.get(record, "event_date"),
			Fighter1:  h.get(record, "fighter_1"),
			Fighter2:  h.get(record, "fighter_2"),
			Winner:    h.get(record, "winner"),
			Method:    h.get(record, "method"),
			Round:     h.get(record, "round"),
			RoundTime: h.get(record, "time"),
			F1:        sideFromRecord(h, record, "f1"),
			F2:        sideFromRecord(h, record, "f2"),
		})
	}
	return fights, nil
}

// ReadFightersCSV loads a fighter profile export.
func ReadFightersCSV(path string) ([]models.FighterProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fighters csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read fighters csv header: %w", err)
	}
	h := indexHeader(header)
	for _, required := range []string{"first_name", "last_name"} {
		if _, ok := h[required]; !ok {
			return nil, fmt.Errorf("fighters csv missing column %q", required)
		}
	}

	var profiles []models.FighterProfile
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read fighters csv line %d: %w", line, err)
		}
		profiles = append(profiles, models.FighterProfile{
			FirstName:   h.get(record, "first_name"),
			LastName:    h.get(record, "last_name"),
			DateOfBirth: h.get(record, "dob"),
			Height:      h.get(record, "height_cm"),
			Reach:       h.get(record, "reach_in"),
			Stance:      h.get(record, "stance"),
		})
	}
	return profiles, nil
}
