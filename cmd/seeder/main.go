package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/courtflow/boxleague/internal/boxes"
	"github.com/courtflow/boxleague/internal/config"
	"github.com/courtflow/boxleague/internal/database"
	"github.com/courtflow/boxleague/internal/league"
	"github.com/courtflow/boxleague/internal/week"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"DB_NAME", "LEAGUE_ID"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	config["TURSO_PRIMARY_URL"] = os.Getenv("TURSO_PRIMARY_URL")
	config["TURSO_AUTH_TOKEN"] = os.Getenv("TURSO_AUTH_TOKEN")
	return config
}

var firstNames = []string{
	"Alice", "Bastian", "Cleo", "Daniel", "Edda", "Finn", "Greta", "Hugo",
	"Ines", "Jonas", "Klara", "Lasse", "Mira", "Nils", "Olga", "Per",
	"Quinn", "Rosa", "Sven", "Tilde",
}

var lastNames = []string{
	"Andersen", "Berg", "Carlsen", "Dahl", "Eriksen", "Foss", "Gran",
	"Holm", "Iversen", "Jensen",
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"], "./migrations")
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	leagueID := cfg["LEAGUE_ID"]
	memberStore := league.NewStore(db)

	const numMembers = 20

	members := make([]league.Member, 0, numMembers)
	for i := 0; i < numMembers; i++ {
		name := fmt.Sprintf("%s %s", firstNames[i%len(firstNames)], lastNames[i%len(lastNames)])
		members = append(members, league.Member{
			ID:           fmt.Sprintf("seed-player-%02d", i+1),
			Name:         name,
			Rating:       1000 + rand.Float64()*800,
			IsMember:     true,
			RatingLinkID: fmt.Sprintf("rating-%02d", i+1),
			SubConsent:   i%3 != 0,
		})
	}

	if err := memberStore.UpsertMembers(leagueID, members); err != nil {
		log.Fatalf("Failed to seed members: %s", err)
	}

	log.Info("Seeded league members.", "league_id", leagueID, "count", numMembers)

	weekStore := week.NewStore(db)
	if _, exists, err := weekStore.Get(week.Key{LeagueID: leagueID, WeekNumber: 1}); err != nil {
		log.Fatalf("Failed to check for existing week: %s", err)
	} else if exists {
		log.Info("Week 1 already exists, skipping demo week.")
		return
	}

	ranked, err := memberStore.MembersByRating(leagueID)
	if err != nil {
		log.Fatalf("Failed to load seeded members: %s", err)
	}
	playerIDs := make([]string, len(ranked))
	for i, m := range ranked {
		playerIDs[i] = m.ID
	}

	packing, err := boxes.Pack(len(playerIDs))
	if err != nil {
		log.Fatalf("Failed to pack roster into boxes: %s", err)
	}
	distributions, err := boxes.Distribute(playerIDs, packing)
	if err != nil {
		log.Fatalf("Failed to distribute players: %s", err)
	}
	assignments := make([]week.BoxAssignment, len(distributions))
	for i, d := range distributions {
		assignments[i] = week.BoxAssignment{BoxNumber: d.BoxNumber, PlayerIDs: d.PlayerIDs}
	}

	demo := week.Week{
		LeagueID:       leagueID,
		WeekNumber:     1,
		State:          week.StateDraft,
		BoxAssignments: assignments,
		RulesSnapshot:  config.DefaultRules(),
	}
	if err := weekStore.Put(demo); err != nil {
		log.Fatalf("Failed to create demo week: %s", err)
	}

	log.Info("Created demo draft week.", "week_number", 1, "boxes", len(assignments))
	log.Info("Activate it with: boxleague-cli activate --week 1")
}
