package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestPqViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: pgUniqueViolation, Constraint: "teams_name_key"})

	constraint, ok := pqViolation(err, pgUniqueViolation)
	if !ok || constraint != "teams_name_key" {
		t.Fatalf("expected unique violation on teams_name_key, got %q (ok=%v)", constraint, ok)
	}

	if _, ok := pqViolation(err, pgForeignKeyViolation); ok {
		t.Fatalf("unique violation must not match foreign key code")
	}
	if _, ok := pqViolation(errors.New("plain"), pgUniqueViolation); ok {
		t.Fatalf("non-postgres error must not match")
	}
}

func TestMapResultWriteError(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{&pq.Error{Code: pgForeignKeyViolation, Constraint: "results_event_id_fkey"}, ErrResultEventInvalid},
		{&pq.Error{Code: pgForeignKeyViolation, Constraint: "results_team_id_fkey"}, ErrResultTeamInvalid},
		{&pq.Error{Code: pgForeignKeyViolation, Constraint: "results_candidate_id_fkey"}, ErrResultCandidateInvalid},
		{&pq.Error{Code: pgCheckViolation, Constraint: "results_points_check"}, ErrResultValueInvalid},
	}
	for _, tc := range cases {
		if got := mapResultWriteError(tc.err); !errors.Is(got, tc.want) {
			t.Errorf("mapResultWriteError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestNullableHelpers(t *testing.T) {
	if nullStringPtr(sql.NullString{}) != nil {
		t.Fatalf("invalid NullString must map to nil")
	}
	if s := nullStringPtr(sql.NullString{String: "x", Valid: true}); s == nil || *s != "x" {
		t.Fatalf("valid NullString not preserved")
	}
	if v := nullIntPtr(sql.NullInt64{Int64: 7, Valid: true}); v == nil || *v != 7 {
		t.Fatalf("valid NullInt64 not preserved")
	}
}
