package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/grabsim/internal/config"
	"github.com/san-kum/grabsim/internal/sim"
)

type ExportData struct {
	Scenario  string             `json:"scenario"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	PhysicsDt float64            `json:"physics_dt"`
	Duration  float64            `json:"duration"`
	Frames    int                `json:"frames"`
	Times     []float64          `json:"times"`
	Hands     []HandTrack        `json:"hands"`
	Events    []sim.EventRecord  `json:"events"`
	Metrics   map[string]float64 `json:"metrics"`
}

// HandTrack is one hand's per-frame state and speed.
type HandTrack struct {
	Side   string    `json:"side"`
	States []string  `json:"states"`
	Held   []string  `json:"held"`
	Speeds []float64 `json:"speeds"`
}

func NewExportData(cfg *config.Config, result *sim.Result) ExportData {
	data := ExportData{
		Scenario:  cfg.Scenario,
		Seed:      cfg.Seed,
		Dt:        cfg.Dt,
		PhysicsDt: cfg.PhysicsDt,
		Duration:  cfg.Duration,
		Frames:    result.Frames,
		Times:     result.Times(),
		Events:    result.Events,
		Metrics:   result.Metrics,
	}

	idx := make(map[string]int)
	for _, s := range result.Samples {
		for _, h := range s.Hands {
			side := h.Side.String()
			i, ok := idx[side]
			if !ok {
				i = len(data.Hands)
				idx[side] = i
				data.Hands = append(data.Hands, HandTrack{Side: side})
			}
			tr := &data.Hands[i]
			tr.States = append(tr.States, h.State.String())
			tr.Held = append(tr.Held, h.Held)
			tr.Speeds = append(tr.Speeds, h.Speed)
		}
	}
	return data
}

func ExportJSON(path string, cfg *config.Config, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, cfg, result)
}

func WriteJSON(w io.Writer, cfg *config.Config, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(cfg, result))
}
