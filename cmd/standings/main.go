// Command standings prints the festival leaderboard and, with -watch, reprints
// it on every change to the results table.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Dosada05/fest-portal/db"
	"github.com/Dosada05/fest-portal/leaderboard"
	"github.com/Dosada05/fest-portal/logging"
	"github.com/Dosada05/fest-portal/models"
	"github.com/Dosada05/fest-portal/repositories"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

func main() {
	_ = godotenv.Load()

	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	watch := flag.Bool("watch", false, "keep listening for result changes and reprint the table")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(os.Stderr, level, logging.FormatText)

	if *dsn == "" {
		color.Red("DATABASE_URL is not set and -dsn was not given")
		os.Exit(2)
	}

	if err := run(*dsn, *watch, logger); err != nil {
		color.Red("standings: %v", err)
		os.Exit(1)
	}
}

func run(dsn string, watch bool, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(dsn, 5*time.Second)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	refresher := leaderboard.NewRefresher(leaderboard.RefresherConfig{
		Source: repositories.NewPostgresResultRepository(dbConn),
		Logger: logger,
		OnUpdate: func(snap models.StandingsSnapshot) {
			printStandings(os.Stdout, snap)
		},
	})

	if !watch {
		_, err := refresher.Refresh(ctx)
		return err
	}

	color.Cyan("Watching results, press Ctrl+C to stop")
	refresher.Watch(ctx, func(context.Context) (leaderboard.ChangeFeed, error) {
		feed, err := leaderboard.NewPQFeed(dsn, 10*time.Second, time.Minute, logger)
		if err != nil {
			return nil, err
		}
		return feed, nil
	})
	return nil
}

func printStandings(w io.Writer, snap models.StandingsSnapshot) {
	color.New(color.FgYellow).Fprintf(w, "\nStandings at %s\n", snap.ComputedAt.Local().Format("15:04:05"))

	if len(snap.Standings) == 0 {
		fmt.Fprintln(w, "No results yet.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "Team", "Points"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, s := range snap.Standings {
		table.Append([]string{
			strconv.Itoa(s.Rank),
			s.TeamName,
			strconv.Itoa(s.TotalPoints),
		})
	}
	table.Render()

	if snap.Skipped > 0 {
		color.New(color.FgRed).Fprintf(w, "%d result(s) skipped: team missing\n", snap.Skipped)
	}
}
