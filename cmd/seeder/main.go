// The seeder loads CSV exports into a running API instance through
// the ingest endpoints, the same path scraped data arrives by.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fightmetrics/predict-api/internal/models"
	"github.com/fightmetrics/predict-api/internal/store"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "base URL of the API server")
	fightsPath := flag.String("fights", "data/fights.csv", "path to the fights CSV export")
	fightersPath := flag.String("fighters", "data/fighters.csv", "path to the fighters CSV export")
	batchSize := flag.Int("batch", 200, "fights per ingest request")
	concurrency := flag.Int("concurrency", 4, "concurrent ingest requests")
	delay := flag.Duration("delay", 100*time.Millisecond, "pause between request starts")
	flag.Parse()

	client := &http.Client{Timeout: 30 * time.Second}

	fighters, err := store.ReadFightersCSV(*fightersPath)
	if err != nil {
		log.Fatalf("read fighters: %v", err)
	}
	if err := postFighters(client, *apiURL, fighters); err != nil {
		log.Fatalf("seed fighters: %v", err)
	}
	log.Printf("Seeded %d fighter profiles", len(fighters))

	fights, err := store.ReadFightsCSV(*fightsPath)
	if err != nil {
		log.Fatalf("read fights: %v", err)
	}

	var g errgroup.Group
	g.SetLimit(*concurrency)
	for start := 0; start < len(fights); start += *batchSize {
		end := start + *batchSize
		if end > len(fights) {
			end = len(fights)
		}
		batch := fights[start:end]
		g.Go(func() error {
			return postFights(client, *apiURL, batch)
		})
		time.Sleep(*delay)
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("seed fights: %v", err)
	}
	log.Printf("Seeded %d fights", len(fights))
}

func postFighters(client *http.Client, apiURL string, fighters []models.FighterProfile) error {
	payload, err := json.Marshal(fighters)
	if err != nil {
		return err
	}
	resp, err := client.Post(apiURL+"/api/v1/ingest/fighters", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("fighters ingest returned %s: %s", resp.Status, body)
	}
	return nil
}

// postFights sends one batch as newline-separated JSON, the format
// the ingest endpoint splits on.
func postFights(client *http.Client, apiURL string, fights []models.Fight) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, f := range fights {
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	resp, err := client.Post(apiURL+"/api/v1/ingest/fights", "application/json", &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("fights ingest returned %s: %s", resp.Status, body)
	}
	return nil
}
