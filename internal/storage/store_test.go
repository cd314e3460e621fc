package storage

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jotingen/pendulum/internal/pendulum"
	"github.com/jotingen/pendulum/internal/sim"
)

func testRun(t *testing.T, steps int) (RunMetadata, *sim.Result) {
	t.Helper()
	upper := pendulum.Body{Length: 100, Mass: 20, Angle: 1.2, Color: pendulum.White}
	lower := pendulum.Body{Length: 80, Mass: 10, Angle: 2.0, Color: pendulum.White}
	meta := RunMetadata{
		Preset: "test",
		Seed:   42,
		Dt:     pendulum.DefaultDt,
		Bodies: [2]BodyMeta{BodyMetaOf(upper), BodyMetaOf(lower)},
	}

	s := sim.New(pendulum.NewSystem(upper, lower), nil)
	result, err := s.Run(context.Background(), sim.Config{Dt: pendulum.DefaultDt, Steps: steps, RecordEvery: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	result.Metrics["energy"] = -1.5
	return meta, result
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta, result := testRun(t, 20)
	runID, err := st.Save(meta, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Preset != "test" {
		t.Errorf("expected preset 'test', got '%s'", loaded.Preset)
	}
	if loaded.Seed != 42 {
		t.Errorf("expected seed 42, got %d", loaded.Seed)
	}
	if loaded.Steps != 20 {
		t.Errorf("expected 20 steps, got %d", loaded.Steps)
	}
	if loaded.Metrics["energy"] != -1.5 {
		t.Errorf("expected energy -1.5, got %f", loaded.Metrics["energy"])
	}
	if loaded.Bodies[1].Body().Length != 80 {
		t.Errorf("body metadata lost: %+v", loaded.Bodies[1])
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != len(result.Frames) {
		t.Fatalf("expected %d frames, got %d", len(result.Frames), len(frames))
	}
	for i := range frames {
		want, got := result.Frames[i], frames[i]
		if got.Step != want.Step || got.Time != want.Time || got.Dt != want.Dt {
			t.Errorf("frame %d header: got %+v, want %+v", i, got, want)
		}
		for r := range got.Bodies {
			g, w := got.Bodies[r], want.Bodies[r]
			if g.Angle != w.Angle || g.AngularVelocity != w.AngularVelocity || g.Length != w.Length || g.Mass != w.Mass {
				t.Errorf("frame %d body %d differs after round trip: got %+v, want %+v", i, r, g, w)
			}
		}
		if got.Tip != want.Tip {
			t.Errorf("frame %d tip differs after round trip", i)
		}
		if got.Energy != want.Energy {
			t.Errorf("frame %d energy: got %v, want %v", i, got.Energy, want.Energy)
		}
	}

	trace, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if len(trace) != 20 || trace[19] != result.Trace[19] {
		t.Errorf("trace differs after round trip")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
	if _, err := st.Latest(); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound from empty store, got %v", err)
	}

	meta, result := testRun(t, 5)
	first, err := st.Save(meta, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	second, err := st.Save(meta, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Unrelated directories are skipped.
	if err := os.Mkdir(filepath.Join(st.Dir(), "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("expected oldest first, got %s, %s", runs[0].ID, runs[1].ID)
	}

	latest, err := st.Latest()
	if err != nil || latest.ID != second {
		t.Errorf("expected latest %s, got %v (%v)", second, latest, err)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	meta, result := testRun(t, 3)
	runID, err := st.Save(meta, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "frames.csv", "trace.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	if header != "step,time,dt,theta1,omega1,theta2,omega2,x,y,energy" {
		t.Errorf("unexpected header %q", header)
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())

	if _, err := st.Load("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load: expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadFrames("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadFrames: expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadTrace("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadTrace: expected ErrRunNotFound, got %v", err)
	}
	if err := st.Remove("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Remove: expected ErrRunNotFound, got %v", err)
	}
}

func TestStoreRemove(t *testing.T) {
	st := New(t.TempDir())
	meta, result := testRun(t, 3)
	runID, err := st.Save(meta, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := st.Remove(runID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := st.Load(runID); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected run to be gone, got %v", err)
	}
}

func TestStoreDivergedRun(t *testing.T) {
	st := New(t.TempDir())
	meta, result := testRun(t, 3)
	result.EnergyDrift = math.NaN()
	result.Metrics["energy_drift"] = math.Inf(1)
	result.Frames[0].Energy = math.NaN()

	runID, err := st.Save(meta, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !loaded.Diverged {
		t.Error("expected diverged flag")
	}
	if _, ok := loaded.Metrics["energy_drift"]; ok {
		t.Error("non-finite metric should be dropped")
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if !math.IsNaN(frames[0].Energy) {
		t.Errorf("expected NaN energy to survive, got %v", frames[0].Energy)
	}
}

func TestStoreSaveFailureLeavesNoRun(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta, result := testRun(t, 5)
	// JSON has no encoding for NaN, so the metadata write fails.
	meta.Bodies[0].Angle = float32(math.NaN())
	if _, err := st.Save(meta, result); err == nil {
		t.Fatal("expected save to fail")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no run directories, found %d", len(entries))
	}
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("List = %v, %v; want no runs", runs, err)
	}
}

func TestNewRunID(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	a, b := NewRunID(now), NewRunID(now)
	if a == b {
		t.Error("run ids should be unique")
	}
	if !strings.HasPrefix(a, "20240301-123000_") {
		t.Errorf("unexpected id %q", a)
	}
}
