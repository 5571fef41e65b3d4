package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/gearset/internal/config"
)

type ExportData struct {
	Metadata *LayoutMetadata `json:"metadata"`
	Train    *config.Config  `json:"train"`
	Poses    []PoseRecord    `json:"poses"`
}

// ExportJSON writes a stored layout, its train parameters and poses as one
// JSON document.
func (s *Store) ExportJSON(w io.Writer, id string) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}
	train, err := s.LoadTrain(id)
	if err != nil {
		return err
	}
	poses, err := s.LoadPoses(id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Metadata: meta, Train: train, Poses: poses})
}
