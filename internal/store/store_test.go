package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/procreport/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "procreport.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndLoadRun(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	stats := []model.CutStat{
		{Name: "trigger", Description: "hw", Processed: 100, Accepted: 80, Rejected: 20},
		{Name: "quality", Processed: 80, Accepted: 50, Rejected: 30},
		{Name: "alpha", Processed: 50, Accepted: 10, Rejected: 40},
	}
	run, err := st.InsertRun(ctx, "run-1", time.Unix(0, 0), stats)
	if err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if run.ID == 0 || run.UUID == "" || run.Cuts != 3 {
		t.Fatalf("unexpected run: %+v", run)
	}

	loaded, err := st.LoadRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	if len(loaded) != len(stats) {
		t.Fatalf("expected %d cuts, got %d", len(stats), len(loaded))
	}
	for i := range stats {
		if loaded[i] != stats[i] {
			t.Fatalf("cut %d: want %+v, got %+v", i, stats[i], loaded[i])
		}
	}
}

func TestLatestAndListRuns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, err := st.LatestRun(ctx); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	var ids []int64
	for i := 0; i < 3; i++ {
		created := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		run, err := st.InsertRun(ctx, "run", created, []model.CutStat{{Name: "a", Processed: uint64(i)}})
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}
		ids = append(ids, run.ID)
	}
	latest, err := st.LatestRun(ctx)
	if err != nil {
		t.Fatalf("latest run: %v", err)
	}
	if latest.ID != ids[2] || latest.Cuts != 1 {
		t.Fatalf("unexpected latest run: %+v", latest)
	}
	runs, err := st.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 3 || runs[0].ID != ids[0] {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if _, err := st.GetRun(ctx, 999); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}
