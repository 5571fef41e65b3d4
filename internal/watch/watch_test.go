package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/gearset/internal/config"
	"github.com/san-kum/gearset/internal/gearset"
)

func writeTrain(t *testing.T, path string, planets int) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.PlanetCount = planets
	if err := config.Save(path, cfg); err != nil {
		t.Fatal(err)
	}
}

func TestReload_KeepsIdentities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.yaml")
	writeTrain(t, path, 5)

	w, err := New(path, gearset.NewScheduler(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Reload(); err != nil {
		t.Fatal(err)
	}

	writeTrain(t, path, 2)
	layout, err := w.Reload()
	if err != nil {
		t.Fatal(err)
	}
	if len(layout.Planets) != 5 {
		t.Errorf("pool %d, want 5", len(layout.Planets))
	}
	if len(layout.VisiblePlanets()) != 2 {
		t.Errorf("visible %d, want 2", len(layout.VisiblePlanets()))
	}
}

func TestReload_BadFileKeepsRevision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.yaml")
	writeTrain(t, path, 3)

	w, _ := New(path, gearset.NewScheduler(), nil)
	if _, err := w.Reload(); err != nil {
		t.Fatal(err)
	}
	before := w.Train()

	if err := os.WriteFile(path, []byte("module: [oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Reload(); err == nil {
		t.Fatal("expected parse error")
	}
	if w.Train() != before {
		t.Error("revision replaced by a failed reload")
	}
}

func TestReload_InvalidTrain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.yaml")
	if err := os.WriteFile(path, []byte("module: -2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	w, _ := New(path, gearset.NewScheduler(), nil)
	if _, err := w.Reload(); err == nil {
		t.Error("expected invalid parameter error")
	}
	if w.Train() != nil {
		t.Error("invalid train should not become the current revision")
	}
}

func TestRun_RecomputesOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.yaml")
	writeTrain(t, path, 3)

	type outcome struct {
		layout *gearset.Layout
		err    error
	}
	results := make(chan outcome, 8)
	w, err := New(path, gearset.NewScheduler(), func(l *gearset.Layout, err error) {
		results <- outcome{l, err}
	}, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	next := func() outcome {
		select {
		case o := <-results:
			return o
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for recompute")
		}
		return outcome{}
	}

	first := next()
	if first.err != nil || len(first.layout.VisiblePlanets()) != 3 {
		t.Fatalf("initial recompute: %+v", first)
	}

	writeTrain(t, path, 4)
	for {
		o := next()
		if o.err == nil && len(o.layout.VisiblePlanets()) == 4 {
			break
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}
