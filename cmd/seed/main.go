// Package main seeds a ZoneIn database with development data: a handful of
// users, a week of session reports each, and a partially populated
// leaderboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/zoneinapp/zonein-server/internal/domain"
	"github.com/zoneinapp/zonein-server/internal/id"
	"github.com/zoneinapp/zonein-server/internal/service"
	"github.com/zoneinapp/zonein-server/internal/store"
	"github.com/zoneinapp/zonein-server/internal/username"
	"github.com/zoneinapp/zonein-server/internal/validation"
)

var seedNames = []string{
	"Ada Lovelace",
	"Grace Hopper",
	"Alan Turing",
	"Katherine Johnson",
	"Edsger Dijkstra",
	"Barbara Liskov",
	"Donald Knuth",
	"Margaret Hamilton",
}

func main() {
	dbPath := flag.String("db", "zonein.db", "path to the SQLite database")
	userCount := flag.Int("users", 5, "number of users to create")
	reportCount := flag.Int("reports", 7, "reports per user")
	flag.Parse()

	if *userCount > len(seedNames) {
		fmt.Fprintf(os.Stderr, "at most %d users supported\n", len(seedNames))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	st, err := store.Open(*dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()
	reports := service.NewReportService(st, validation.New(), logger)
	leaderboard := service.NewLeaderboardService(st, logger)
	usernames := username.NewGenerator(st)

	users := make([]*domain.User, 0, *userCount)
	for i := range *userCount {
		user, err := seedUser(ctx, st, usernames, seedNames[i])
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed user %q: %v\n", seedNames[i], err)
			os.Exit(1)
		}
		users = append(users, user)
	}

	var published []string
	for _, user := range users {
		for day := range *reportCount {
			result, err := reports.SubmitReport(ctx, user.ID, randomReport(day))
			if err != nil {
				fmt.Fprintf(os.Stderr, "seed report for %s: %v\n", user.Username, err)
				os.Exit(1)
			}
			// Publish roughly a third of the sessions.
			if rand.IntN(3) == 0 {
				if _, err := reports.SetPublished(ctx, user.ID, result.Report.ID, true); err != nil {
					fmt.Fprintf(os.Stderr, "publish report: %v\n", err)
					os.Exit(1)
				}
				published = append(published, result.Report.ID)
			}
		}
	}

	emojis := []string{"👏", "🔥", "💪", "⭐", "🎉"}
	reactions := 0
	for _, reportID := range published {
		for _, user := range users {
			if rand.IntN(2) == 0 {
				continue
			}
			_, err := leaderboard.React(ctx, user.ID, reportID, emojis[rand.IntN(len(emojis))])
			if err != nil {
				// Reacting to your own unreachable report is fine to skip.
				continue
			}
			reactions++
		}
	}

	fmt.Printf("Seeded %d users, %d reports (%d published), %d reactions into %s\n",
		len(users), len(users)*(*reportCount), len(published), reactions, *dbPath)
}

func seedUser(ctx context.Context, st *store.Store, usernames *username.Generator, name string) (*domain.User, error) {
	userID, err := id.New("user")
	if err != nil {
		return nil, err
	}
	handle, err := usernames.Generate(ctx, name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        userID,
		GoogleSub: "seed-" + userID,
		Email:     handle + "@example.com",
		Name:      name,
		Username:  handle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// randomReport builds a plausible finished session ending daysAgo days in
// the past.
func randomReport(daysAgo int) service.SubmitReportRequest {
	duration := float64(20*60 + rand.IntN(100*60))
	focused := duration * (0.4 + rand.Float64()*0.5)
	distracted := (duration - focused) * rand.Float64()
	neutral := duration - focused - distracted

	endedAt := time.Now().UTC().AddDate(0, 0, -daysAgo).Add(-time.Duration(rand.IntN(8)) * time.Hour)
	startedAt := endedAt.Add(-time.Duration(duration) * time.Second)

	sessionID, err := id.New("sess")
	if err != nil {
		sessionID = fmt.Sprintf("sess_seed_%d", rand.Int64())
	}

	return service.SubmitReportRequest{
		SessionID:     sessionID,
		StartedAt:     startedAt,
		EndedAt:       endedAt,
		DurationSec:   duration,
		FocusedSec:    focused,
		DistractedSec: distracted,
		NeutralSec:    neutral,
		ZoneInScore:   float64(int(focused/duration*10000)) / 100,
	}
}
