//go:build integration
// +build integration

package storage

import (
	"context"
	"testing"

	"github.com/guttosm/bpipulse/internal/domain/models"
	"github.com/guttosm/bpipulse/internal/testutil"
)

func TestRepository_Integration(t *testing.T) {
	pg := testutil.StartPostgres(t)
	repo := NewPricesRepository(pg.DB)
	ctx := context.Background()

	jan := []models.DataPoint{
		{Date: "2018-01-01", Price: 13412.44},
		{Date: "2018-01-02", Price: 14740.7563},
		{Date: "2018-01-03", Price: 15134.6513},
	}
	if err := repo.InsertPointsBatch(ctx, "jan.json", jan); err != nil {
		t.Fatalf("insert jan: %v", err)
	}
	// A later file overrides one date.
	if err := repo.InsertPointsBatch(ctx, "fix.json", []models.DataPoint{{Date: "2018-01-02", Price: 1}}); err != nil {
		t.Fatalf("insert fix: %v", err)
	}

	cases := []struct {
		name       string
		start, end string
		want       []models.DataPoint
	}{
		{
			name: "all dates, latest import wins",
			want: []models.DataPoint{jan[0], {Date: "2018-01-02", Price: 1}, jan[2]},
		},
		{
			name:  "from second day",
			start: "2018-01-02",
			want:  []models.DataPoint{{Date: "2018-01-02", Price: 1}, jan[2]},
		},
		{
			name: "up to first day",
			end:  "2018-01-01",
			want: []models.DataPoint{jan[0]},
		},
		{
			name:  "empty range",
			start: "2019-01-01",
			want:  nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.GetPoints(ctx, tc.start, tc.end)
			if err != nil {
				t.Fatalf("GetPoints: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("point %d: got %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}

	t.Run("ingestion log upsert+exists", func(t *testing.T) {
		if err := repo.UpsertIngestionLog(ctx, "jan.json", 3); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		ok, err := repo.HasIngestionForFile(ctx, "jan.json")
		if err != nil || !ok {
			t.Fatalf("exists want true, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("delete by file", func(t *testing.T) {
		if err := repo.DeletePointsByFile(ctx, "fix.json"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		got, err := repo.GetPoints(ctx, "2018-01-02", "2018-01-02")
		if err != nil {
			t.Fatalf("GetPoints: %v", err)
		}
		if len(got) != 1 || got[0] != jan[1] {
			t.Fatalf("expected jan price back after delete, got %+v", got)
		}
	})

	t.Run("replace by file", func(t *testing.T) {
		repl := []models.DataPoint{{Date: "2018-01-01", Price: 1}}
		if err := repo.ReplacePointsByFile(ctx, "jan.json", repl); err != nil {
			t.Fatalf("replace: %v", err)
		}
		got, err := repo.GetPoints(ctx, "2018-01-01", "2018-01-31")
		if err != nil {
			t.Fatalf("GetPoints: %v", err)
		}
		if len(got) != 1 || got[0] != repl[0] {
			t.Fatalf("expected only the replacement point, got %+v", got)
		}
	})
}
