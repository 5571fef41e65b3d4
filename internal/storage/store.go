package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/gearset/internal/config"
	"github.com/san-kum/gearset/internal/gearset"
)

const (
	metadataFile = "metadata.json"
	trainFile    = "train.yaml"
	posesFile    = "poses.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type LayoutMetadata struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Timestamp      time.Time `json:"timestamp"`
	SolveFor       string    `json:"solve_for"`
	Module         float64   `json:"module"`
	SunTeeth       int       `json:"sun_teeth"`
	PlanetTeeth    int       `json:"planet_teeth"`
	RingTeeth      int       `json:"ring_teeth"`
	PlanetCount    int       `json:"planet_count"`
	PoolSize       int       `json:"pool_size"`
	CenterDistance float64   `json:"center_distance"`
	Diagnostics    []string  `json:"diagnostics,omitempty"`
}

// PoseRecord is one row of poses.csv.
type PoseRecord struct {
	Role     string  `json:"role"`
	Index    int     `json:"index"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	Visible  bool    `json:"visible"`
}

// Records flattens a layout into sun, ring, then every planet of the pool.
func Records(layout *gearset.Layout) []PoseRecord {
	out := make([]PoseRecord, 0, len(layout.Planets)+2)
	for _, p := range append([]gearset.Pose{layout.Sun, layout.Ring}, layout.Planets...) {
		out = append(out, PoseRecord{
			Role:     p.Role.String(),
			Index:    p.Index,
			X:        p.Position.X,
			Y:        p.Position.Y,
			Rotation: p.Rotation,
			Visible:  p.Visible,
		})
	}
	return out
}

// Save writes a layout under a new ID and returns it.
func (s *Store) Save(name string, layout *gearset.Layout) (string, error) {
	if name == "" {
		name = "layout"
	}
	id := fmt.Sprintf("%s_%s", name, uuid.NewString()[:8])
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	t := layout.Train
	meta := LayoutMetadata{
		ID:             id,
		Name:           name,
		Timestamp:      time.Now(),
		SolveFor:       t.SolveFor.String(),
		Module:         t.Module,
		SunTeeth:       layout.Triple.Sun,
		PlanetTeeth:    layout.Triple.Planet,
		RingTeeth:      layout.Triple.Ring,
		PlanetCount:    t.PlanetCount,
		PoolSize:       len(t.Planets),
		CenterDistance: layout.Phase.CenterDistance,
	}
	for _, d := range layout.Diagnostics {
		meta.Diagnostics = append(meta.Diagnostics, d.Message)
	}

	if err := writeJSON(filepath.Join(dir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(dir, trainFile), config.FromTrain(t)); err != nil {
		return "", err
	}
	if err := writePoses(filepath.Join(dir, posesFile), Records(layout)); err != nil {
		return "", err
	}
	return id, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writePoses(path string, records []PoseRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WritePosesCSV(f, records); err != nil {
		return err
	}
	return f.Close()
}

// WritePosesCSV writes records with a header row.
func WritePosesCSV(w io.Writer, records []PoseRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"role", "index", "x", "y", "rotation", "visible"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Role,
			strconv.Itoa(r.Index),
			strconv.FormatFloat(r.X, 'f', 6, 64),
			strconv.FormatFloat(r.Y, 'f', 6, 64),
			strconv.FormatFloat(r.Rotation, 'f', 6, 64),
			strconv.FormatBool(r.Visible),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// List returns every stored layout, newest first.
func (s *Store) List() ([]LayoutMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []LayoutMetadata{}, nil
		}
		return nil, err
	}

	layouts := make([]LayoutMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		layouts = append(layouts, *meta)
	}

	sort.Slice(layouts, func(i, j int) bool {
		return layouts[i].Timestamp.After(layouts[j].Timestamp)
	})
	return layouts, nil
}

func (s *Store) Load(id string) (*LayoutMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta LayoutMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrain returns the train parameters a layout was computed from.
func (s *Store) LoadTrain(id string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, id, trainFile))
}

func (s *Store) LoadPoses(id string) ([]PoseRecord, error) {
	f, err := os.Open(filepath.Join(s.baseDir, id, posesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []PoseRecord{}, nil
	}

	records := make([]PoseRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parsePose(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", posesFile, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parsePose(row []string) (PoseRecord, error) {
	var (
		rec PoseRecord
		err error
	)
	rec.Role = row[0]
	if rec.Index, err = strconv.Atoi(row[1]); err != nil {
		return rec, err
	}
	if rec.X, err = strconv.ParseFloat(row[2], 64); err != nil {
		return rec, err
	}
	if rec.Y, err = strconv.ParseFloat(row[3], 64); err != nil {
		return rec, err
	}
	if rec.Rotation, err = strconv.ParseFloat(row[4], 64); err != nil {
		return rec, err
	}
	if rec.Visible, err = strconv.ParseBool(row[5]); err != nil {
		return rec, err
	}
	return rec, nil
}
