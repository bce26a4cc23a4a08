package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/fest-portal/models"
	"github.com/fatih/color"
)

func TestPrintStandings(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printStandings(&buf, models.StandingsSnapshot{
		Standings: []models.TeamScore{
			{TeamID: 1, TeamName: "Alpha", TotalPoints: 15, Rank: 1},
			{TeamID: 2, TeamName: "Bravo", TotalPoints: 15, Rank: 2},
		},
		ComputedAt: time.Now(),
		Skipped:    1,
	})

	out := buf.String()
	alpha, bravo := strings.Index(out, "Alpha"), strings.Index(out, "Bravo")
	if alpha < 0 || bravo < 0 || alpha > bravo {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if !strings.Contains(out, "1 result(s) skipped") {
		t.Errorf("skipped notice missing:\n%s", out)
	}
}

func TestPrintStandingsEmpty(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printStandings(&buf, models.StandingsSnapshot{ComputedAt: time.Now()})
	if !strings.Contains(buf.String(), "No results yet.") {
		t.Errorf("output = %q", buf.String())
	}
}
