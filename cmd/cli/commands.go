package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	weekNumber  int
	playerID    string
	playerName  string
	declaredBy  string
	reason      string
	policy      string
	absentID    string
	subID       string
	subName     string
	matchID     string
	pointsA     int
	pointsB     int
	boxNumber   int
	playerCount int
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(weeksCmd)
	rootCmd.AddCommand(currentWeekCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(countersCmd)

	createWeekCmd.Flags().IntVar(&weekNumber, "week", 0, "Week number to create")
	rootCmd.AddCommand(createWeekCmd)

	activateCmd.Flags().IntVar(&weekNumber, "week", 0, "Week number to activate")
	rootCmd.AddCommand(activateCmd)

	startClosingCmd.Flags().IntVar(&weekNumber, "week", 0, "Week number to move into closing")
	rootCmd.AddCommand(startClosingCmd)

	finalizeCmd.Flags().IntVar(&weekNumber, "week", 0, "Week number to finalize")
	rootCmd.AddCommand(finalizeCmd)

	recordResultCmd.Flags().StringVar(&matchID, "match", "", "Match ID")
	recordResultCmd.Flags().IntVar(&pointsA, "points-a", 0, "Points scored by team A")
	recordResultCmd.Flags().IntVar(&pointsB, "points-b", 0, "Points scored by team B")
	recordResultCmd.MarkFlagRequired("match")
	rootCmd.AddCommand(recordResultCmd)

	declareAbsenceCmd.Flags().IntVar(&weekNumber, "week", 0, "Week number")
	declareAbsenceCmd.Flags().StringVar(&playerID, "player", "", "Absent player ID")
	declareAbsenceCmd.Flags().StringVar(&playerName, "name", "", "Absent player name")
	declareAbsenceCmd.Flags().StringVar(&declaredBy, "declared-by", "", "Who declared the absence")
	declareAbsenceCmd.Flags().StringVar(&reason, "reason", "", "Reason for the absence")
	declareAbsenceCmd.Flags().StringVar(&policy, "policy", "", "Scoring policy (freeze, ghost_score, average_points)")
	declareAbsenceCmd.MarkFlagRequired("player")
	rootCmd.AddCommand(declareAbsenceCmd)

	cancelAbsenceCmd.Flags().IntVar(&weekNumber, "week", 0, "Week number")
	cancelAbsenceCmd.Flags().StringVar(&playerID, "player", "", "Absent player ID")
	cancelAbsenceCmd.MarkFlagRequired("player")
	rootCmd.AddCommand(cancelAbsenceCmd)

	assignSubCmd.Flags().IntVar(&weekNumber, "week", 0, "Week number")
	assignSubCmd.Flags().StringVar(&absentID, "absent", "", "Absent player ID")
	assignSubCmd.Flags().StringVar(&subID, "sub", "", "Substitute player ID")
	assignSubCmd.Flags().StringVar(&subName, "sub-name", "", "Substitute player name")
	assignSubCmd.MarkFlagRequired("absent")
	assignSubCmd.MarkFlagRequired("sub")
	rootCmd.AddCommand(assignSubCmd)

	subCandidatesCmd.Flags().IntVar(&weekNumber, "week", 0, "Week number")
	subCandidatesCmd.Flags().IntVar(&boxNumber, "box", 1, "Box the substitute would play in")
	rootCmd.AddCommand(subCandidatesCmd)

	recordNoShowCmd.Flags().IntVar(&weekNumber, "week", 0, "Week number")
	recordNoShowCmd.Flags().StringVar(&playerID, "player", "", "No-show player ID")
	recordNoShowCmd.Flags().StringVar(&playerName, "name", "", "No-show player name")
	recordNoShowCmd.Flags().StringVar(&declaredBy, "declared-by", "", "Who recorded the no-show")
	recordNoShowCmd.Flags().StringVar(&policy, "policy", "", "Scoring policy (freeze, ghost_score, average_points)")
	recordNoShowCmd.MarkFlagRequired("player")
	rootCmd.AddCommand(recordNoShowCmd)

	removeSubCmd.Flags().IntVar(&weekNumber, "week", 0, "Week number")
	removeSubCmd.Flags().StringVar(&absentID, "absent", "", "Absent player ID")
	removeSubCmd.MarkFlagRequired("absent")
	rootCmd.AddCommand(removeSubCmd)

	resetWeekCmd.Flags().IntVar(&weekNumber, "week", 0, "Week number to reset")
	rootCmd.AddCommand(resetWeekCmd)

	packPreviewCmd.Flags().IntVar(&playerCount, "players", 0, "Number of players to pack")
	packPreviewCmd.MarkFlagRequired("players")
	rootCmd.AddCommand(packPreviewCmd)

	playerStatsCmd.Flags().StringVar(&playerID, "player", "", "Player ID")
	playerStatsCmd.MarkFlagRequired("player")
	rootCmd.AddCommand(playerStatsCmd)

	matchesCmd.Flags().IntVar(&weekNumber, "week", 0, "Week number")
	rootCmd.AddCommand(matchesCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var weeksCmd = &cobra.Command{
	Use:   "weeks",
	Short: "List all weeks in the league",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/weeks")
	},
}

var currentWeekCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current week",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/weeks/current")
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Show the standings for the current week",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/standings")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the season leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard")
	},
}

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "List the league members",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/members")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var countersCmd = &cobra.Command{
	Use:   "counters",
	Short: "Show the durable per-league counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/counters")
	},
}

var createWeekCmd = &cobra.Command{
	Use:   "create-week",
	Short: "Create a draft week seeded from member ratings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/create-week", map[string]any{"week_number": weekNumber})
	},
}

var activateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Activate a draft week and generate its matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/activate", map[string]any{"week_number": weekNumber})
	},
}

var startClosingCmd = &cobra.Command{
	Use:   "start-closing",
	Short: "Move an active week into the closing window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/start-closing", map[string]any{"week_number": weekNumber})
	},
}

var finalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Finalize a closing week and roll over into the next draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/finalize", map[string]any{"week_number": weekNumber})
	},
}

var recordResultCmd = &cobra.Command{
	Use:   "record-result",
	Short: "Record the score of a match",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/record-result", map[string]any{
			"match_id": matchID,
			"points_a": pointsA,
			"points_b": pointsB,
		})
	},
}

var declareAbsenceCmd = &cobra.Command{
	Use:   "declare-absence",
	Short: "Declare a player absent for a week",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/declare-absence", map[string]any{
			"week_number": weekNumber,
			"player_id":   playerID,
			"player_name": playerName,
			"declared_by": declaredBy,
			"reason":      reason,
			"policy":      policy,
		})
	},
}

var cancelAbsenceCmd = &cobra.Command{
	Use:   "cancel-absence",
	Short: "Cancel a declared absence",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/cancel-absence", map[string]any{
			"week_number": weekNumber,
			"player_id":   playerID,
		})
	},
}

var assignSubCmd = &cobra.Command{
	Use:   "assign-substitute",
	Short: "Assign a substitute for an absent player",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/assign-substitute", map[string]any{
			"week_number":      weekNumber,
			"absent_player_id": absentID,
			"substitute_id":    subID,
			"substitute_name":  subName,
		})
	},
}

var recordNoShowCmd = &cobra.Command{
	Use:   "record-no-show",
	Short: "Record a no-show for a player",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/record-no-show", map[string]any{
			"week_number": weekNumber,
			"player_id":   playerID,
			"player_name": playerName,
			"declared_by": declaredBy,
			"policy":      policy,
		})
	},
}

var removeSubCmd = &cobra.Command{
	Use:   "remove-substitute",
	Short: "Remove an assigned substitute",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/remove-substitute", map[string]any{
			"week_number":      weekNumber,
			"absent_player_id": absentID,
		})
	},
}

var resetWeekCmd = &cobra.Command{
	Use:   "reset-week",
	Short: "Reset a week back to a freshly seeded draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/reset-week", map[string]any{"week_number": weekNumber})
	},
}

var packPreviewCmd = &cobra.Command{
	Use:   "pack-preview",
	Short: "Preview the box layout for a player count",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest(fmt.Sprintf("/pack-preview?count=%d", playerCount))
	},
}

var playerStatsCmd = &cobra.Command{
	Use:   "player-stats",
	Short: "Show the season stats for a player",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/player-stats?player_id=" + playerID)
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the matches for a week",
	RunE: func(cmd *cobra.Command, args []string) error {
		if weekNumber > 0 {
			return performGetRequest(fmt.Sprintf("/matches?week_number=%d", weekNumber))
		}
		return performGetRequest("/matches")
	},
}

var subCandidatesCmd = &cobra.Command{
	Use:   "substitute-candidates",
	Short: "List eligible substitutes for a box",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := fmt.Sprintf("/substitute-candidates?box_number=%d", boxNumber)
		if weekNumber > 0 {
			endpoint = fmt.Sprintf("%s&week_number=%d", endpoint, weekNumber)
		}
		return performGetRequest(endpoint)
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string, payload any) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
