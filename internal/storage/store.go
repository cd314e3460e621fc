package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jotingen/pendulum/internal/pendulum"
	"github.com/jotingen/pendulum/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	traceFile    = "trace.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

var frameHeader = []string{"step", "time", "dt", "theta1", "omega1", "theta2", "omega2", "x", "y", "energy"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// BodyMeta is the starting state of one body.
type BodyMeta struct {
	Length          float32 `json:"length"`
	Mass            float32 `json:"mass"`
	Angle           float32 `json:"angle"`
	AngularVelocity float32 `json:"angular_velocity"`
	Color           string  `json:"color"`
}

func BodyMetaOf(b pendulum.Body) BodyMeta {
	return BodyMeta{
		Length:          b.Length,
		Mass:            b.Mass,
		Angle:           b.Angle,
		AngularVelocity: b.AngularVelocity,
		Color:           fmt.Sprintf("#%02x%02x%02x%02x", b.Color.R, b.Color.G, b.Color.B, b.Color.A),
	}
}

// Body rebuilds a body at its recorded starting state.
func (m BodyMeta) Body() pendulum.Body {
	b := pendulum.Body{
		Length:          m.Length,
		Mass:            m.Mass,
		Angle:           m.Angle,
		AngularVelocity: m.AngularVelocity,
		Color:           pendulum.White,
	}
	var r, g, bl, a uint8
	if _, err := fmt.Sscanf(m.Color, "#%02x%02x%02x%02x", &r, &g, &bl, &a); err == nil {
		b.Color = color.RGBA{R: r, G: g, B: bl, A: a}
	}
	return b
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Preset      string             `json:"preset,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Dt          float32            `json:"dt"`
	Steps       int                `json:"steps"`
	Variable    bool               `json:"variable"`
	Bodies      [2]BodyMeta        `json:"bodies"`
	EnergyDrift float64            `json:"energy_drift"`
	Diverged    bool               `json:"diverged"`
	Metrics     map[string]float64 `json:"metrics"`
}

// NewRunID returns a sortable, unique run directory name.
func NewRunID(now time.Time) string {
	return fmt.Sprintf("%s_%s", now.UTC().Format("20060102-150405"), uuid.NewString()[:8])
}

// Save writes the run under a new id and returns it. Fields of meta that
// the result already knows are filled in from it.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	meta.ID = NewRunID(now)
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.EnergyDrift = result.EnergyDrift
	meta.Diverged = result.Diverged
	if !finite(meta.EnergyDrift) {
		meta.EnergyDrift = 0
		meta.Diverged = true
	}
	meta.Metrics = sanitize(result.Metrics)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeRun(runDir, meta, result); err != nil {
		// A partial directory would be skipped by List forever.
		os.RemoveAll(runDir)
		return "", err
	}

	return meta.ID, nil
}

func writeRun(runDir string, meta RunMetadata, result *sim.Result) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result.Frames); err != nil {
		return fmt.Errorf("write frames: %w", err)
	}
	if err := writeTrace(filepath.Join(runDir, traceFile), result.Trace); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(s.path(runID, metadataFile))
	if err != nil {
		return nil, notFound(runID, err)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// Latest returns the most recent run.
func (s *Store) Latest() (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: no runs in %s", ErrRunNotFound, s.baseDir)
	}
	return &runs[len(runs)-1], nil
}

func (s *Store) Remove(runID string) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}

// LoadFrames reads the recorded frames back. Lengths, masses and colours
// come from the run metadata since they do not change during a run.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	records, err := readCSV(s.path(runID, framesFile))
	if err != nil {
		return nil, notFound(runID, err)
	}
	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	template := [2]pendulum.Body{meta.Bodies[0].Body(), meta.Bodies[1].Body()}
	frames := make([]sim.Frame, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(frameHeader) {
			return nil, fmt.Errorf("run %s: frames.csv row %d: expected %d fields, got %d", runID, i+2, len(frameHeader), len(record))
		}
		f, err := parseFrame(record, template)
		if err != nil {
			return nil, fmt.Errorf("run %s: frames.csv row %d: %w", runID, i+2, err)
		}
		frames = append(frames, f)
	}

	return frames, nil
}

func (s *Store) LoadTrace(runID string) ([]pendulum.Vec2, error) {
	records, err := readCSV(s.path(runID, traceFile))
	if err != nil {
		return nil, notFound(runID, err)
	}
	if len(records) < 2 {
		return []pendulum.Vec2{}, nil
	}

	trace := make([]pendulum.Vec2, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != 2 {
			return nil, fmt.Errorf("run %s: trace.csv row %d: expected 2 fields", runID, i+2)
		}
		x, errX := parse32(record[0])
		y, errY := parse32(record[1])
		if err := errors.Join(errX, errY); err != nil {
			return nil, fmt.Errorf("run %s: trace.csv row %d: %w", runID, i+2, err)
		}
		trace = append(trace, pendulum.Vec2{X: x, Y: y})
	}
	return trace, nil
}

func (s *Store) path(runID, name string) string {
	return filepath.Join(s.baseDir, runID, name)
}

func notFound(runID string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return err
}

// createFile runs write against a new file at path and reports the first of
// the write and close errors.
func createFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

func writeJSON(path string, v any) error {
	return createFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func writeFrames(path string, frames []sim.Frame) error {
	return createFile(path, func(out io.Writer) error {
		w := csv.NewWriter(out)
		if err := w.Write(frameHeader); err != nil {
			return err
		}
		for _, fr := range frames {
			upper, lower := fr.Bodies[pendulum.Upper], fr.Bodies[pendulum.Lower]
			row := []string{
				strconv.Itoa(fr.Step),
				format64(fr.Time),
				format32(fr.Dt),
				format32(upper.Angle),
				format32(upper.AngularVelocity),
				format32(lower.Angle),
				format32(lower.AngularVelocity),
				format32(fr.Tip.X),
				format32(fr.Tip.Y),
				format64(fr.Energy),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

func writeTrace(path string, trace []pendulum.Vec2) error {
	return createFile(path, func(out io.Writer) error {
		w := csv.NewWriter(out)
		if err := w.Write([]string{"x", "y"}); err != nil {
			return err
		}
		for _, p := range trace {
			if err := w.Write([]string{format32(p.X), format32(p.Y)}); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func parseFrame(record []string, template [2]pendulum.Body) (sim.Frame, error) {
	step, err := strconv.Atoi(record[0])
	if err != nil {
		return sim.Frame{}, err
	}
	t, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return sim.Frame{}, err
	}
	energy, err := strconv.ParseFloat(record[9], 64)
	if err != nil {
		return sim.Frame{}, err
	}

	vals := make([]float32, 7)
	for i := range vals {
		v, err := parse32(record[i+2])
		if err != nil {
			return sim.Frame{}, err
		}
		vals[i] = v
	}

	bodies := template
	bodies[0].Angle, bodies[0].AngularVelocity = vals[1], vals[2]
	bodies[1].Angle, bodies[1].AngularVelocity = vals[3], vals[4]

	return sim.Frame{
		Step:   step,
		Time:   t,
		Dt:     vals[0],
		Bodies: bodies,
		Tip:    pendulum.Vec2{X: vals[5], Y: vals[6]},
		Energy: energy,
	}, nil
}

func format32(v float32) string { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func format64(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func parse32(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}

// sanitize drops NaN and Inf metric values, which encoding/json rejects.
func sanitize(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !finite(v) {
			continue
		}
		out[k] = v
	}
	return out
}
