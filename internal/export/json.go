package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/atomsim/internal/config"
	"github.com/san-kum/atomsim/internal/driver"
)

type TickRecord struct {
	Tick       int     `json:"tick"`
	Time       float64 `json:"time"`
	Collisions int     `json:"collisions"`
	Links      int     `json:"links"`
	Bursting   int     `json:"bursting"`
	MeanSpeed  float64 `json:"mean_speed"`
}

type ExportData struct {
	Name    string             `json:"name"`
	Config  *config.Config     `json:"config"`
	Ticks   int                `json:"ticks"`
	Stats   []TickRecord       `json:"stats"`
	Metrics map[string]float64 `json:"metrics"`
}

func NewExportData(name string, cfg *config.Config, result *driver.Result) ExportData {
	data := ExportData{
		Name:    name,
		Config:  cfg,
		Ticks:   result.TicksTaken,
		Stats:   make([]TickRecord, len(result.Stats)),
		Metrics: result.Metrics,
	}
	for i, st := range result.Stats {
		data.Stats[i] = TickRecord{
			Tick:       st.Tick,
			Time:       st.Time,
			Collisions: st.Collisions,
			Links:      st.Links,
			Bursting:   st.Bursting,
			MeanSpeed:  st.MeanSpeed,
		}
	}
	return data
}

// WriteJSON encodes a run as indented JSON.
func WriteJSON(w io.Writer, name string, cfg *config.Config, result *driver.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(name, cfg, result))
}

func ExportJSON(path string, name string, cfg *config.Config, result *driver.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, name, cfg, result)
}
