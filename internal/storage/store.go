package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/atomsim/internal/atomic"
	"github.com/san-kum/atomsim/internal/config"
	"github.com/san-kum/atomsim/internal/driver"
)

const (
	metadataFile = "metadata.json"
	statsFile    = "stats.csv"
)

var statsHeader = []string{"tick", "time", "collisions", "links", "bursting", "mean_speed"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Config    *config.Config     `json:"config"`
	Ticks     int                `json:"ticks"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run directory holding the metadata and the per-tick
// stats, and returns the run ID.
func (s *Store) Save(name string, cfg *config.Config, result *driver.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: now,
		Config:    cfg,
		Ticks:     result.TicksTaken,
		Metrics:   result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStats(filepath.Join(runDir, statsFile), result.Stats); err != nil {
		return "", err
	}
	return runID, nil
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

func writeStats(path string, stats []driver.TickStats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(statsHeader); err != nil {
		return err
	}
	for _, st := range stats {
		row := []string{
			strconv.Itoa(st.Tick),
			strconv.FormatFloat(st.Time, 'f', 6, 64),
			strconv.Itoa(st.Collisions),
			strconv.Itoa(st.Links),
			strconv.Itoa(st.Bursting),
			strconv.FormatFloat(st.MeanSpeed, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first. Directories without
// valid metadata are skipped.
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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadStats reads back the per-tick stats of a run. Malformed rows are
// skipped.
func (s *Store) LoadStats(runID string) ([]driver.TickStats, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []driver.TickStats{}, nil
	}

	stats := make([]driver.TickStats, 0, len(records)-1)
	for _, rec := range records[1:] {
		st, ok := parseStats(rec)
		if !ok {
			continue
		}
		stats = append(stats, st)
	}
	return stats, nil
}

func parseStats(rec []string) (driver.TickStats, bool) {
	if len(rec) != len(statsHeader) {
		return driver.TickStats{}, false
	}
	tick, err1 := strconv.Atoi(rec[0])
	tm, err2 := strconv.ParseFloat(rec[1], 64)
	coll, err3 := strconv.Atoi(rec[2])
	links, err4 := strconv.Atoi(rec[3])
	burst, err5 := strconv.Atoi(rec[4])
	mean, err6 := strconv.ParseFloat(rec[5], 64)
	for _, err := range []error{err1, err2, err3, err4, err5, err6} {
		if err != nil {
			return driver.TickStats{}, false
		}
	}
	return driver.TickStats{
		Tick: tick,
		Time: tm,
		Stats: atomic.Stats{
			Collisions: coll,
			Links:      links,
			Bursting:   burst,
			MeanSpeed:  mean,
		},
	}, true
}

// MeanSpeeds extracts the mean speed column, for plotting.
func MeanSpeeds(stats []driver.TickStats) []float64 {
	out := make([]float64, len(stats))
	for i, st := range stats {
		out[i] = st.MeanSpeed
	}
	return out
}
