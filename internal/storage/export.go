package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/sim"
)

type ExportFrame struct {
	Time      float64       `json:"time"`
	Kinetic   float64       `json:"kinetic"`
	Potential float64       `json:"potential"`
	Positions []dynamo.Vec2 `json:"positions"`
}

type ExportData struct {
	RunMetadata
	Data []ExportFrame `json:"data"`
}

// ExportJSON writes meta and frames as one indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, frames []sim.FrameRecord) error {
	data := ExportData{
		RunMetadata: meta,
		Data:        make([]ExportFrame, len(frames)),
	}
	for i, f := range frames {
		data.Data[i] = ExportFrame{
			Time:      f.Time,
			Kinetic:   f.Energy.Kinetic,
			Potential: f.Energy.Potential,
			Positions: f.Positions,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
