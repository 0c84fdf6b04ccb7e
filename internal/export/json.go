package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/dispsim/internal/sim"
	"github.com/san-kum/dispsim/internal/storage"
)

type ExportData struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Field     string             `json:"field"`
	Materials []string           `json:"materials"`
	Dt        float64            `json:"dt"`
	Steps     int                `json:"steps"`
	Times     []float64          `json:"times"`
	W         []float64          `json:"w"`
	P         []float64          `json:"p"`
	Corrected []float64          `json:"corrected"`
	Metrics   map[string]float64 `json:"metrics"`
}

func NewExportData(meta *storage.RunMetadata, samples []sim.Sample) ExportData {
	res := &sim.Result{Samples: samples}
	return ExportData{
		ID:        meta.ID,
		Name:      meta.Name,
		Field:     meta.Field,
		Materials: meta.Materials,
		Dt:        meta.Dt,
		Steps:     len(samples),
		Times:     res.Times(),
		W:         res.Series(func(s sim.Sample) float64 { return s.W }),
		P:         res.Polarization(),
		Corrected: res.Series(func(s sim.Sample) float64 { return s.Corrected }),
		Metrics:   meta.Metrics,
	}
}

// WriteJSON encodes the run as columnar JSON.
func WriteJSON(w io.Writer, meta *storage.RunMetadata, samples []sim.Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(meta, samples))
}

func ExportJSON(path string, meta *storage.RunMetadata, samples []sim.Sample) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, samples)
}
