package web

import (
	"encoding/json"

	"github.com/sweeney/devpanel/internal/status"
	"github.com/sweeney/devpanel/internal/ui"
)

// FieldJSON is one panel text element.
type FieldJSON struct {
	Name   string `json:"name"`
	Text   string `json:"text"`
	MaxLen int    `json:"max_len"`
}

// FieldsJSON is the compact panel view served at /fields.json.
type FieldsJSON struct {
	Fields []FieldJSON `json:"fields"`
	Image  string      `json:"image,omitempty"`
	Slide  int         `json:"slide"`
	Radio  string      `json:"radio"`
}

// fieldRows returns the panel fields in display order.
func fieldRows(snap status.Snapshot) []FieldJSON {
	rows := make([]FieldJSON, 0, len(ui.Fields))
	for _, f := range ui.Fields {
		rows = append(rows, FieldJSON{Name: string(f), Text: snap.Field(f), MaxLen: ui.MaxLen(f)})
	}
	return rows
}

func formatFields(snap status.Snapshot) []byte {
	fj := FieldsJSON{
		Fields: fieldRows(snap),
		Image:  snap.Image,
		Slide:  snap.Slide,
		Radio:  snap.Radio,
	}
	data, _ := json.MarshalIndent(fj, "", "  ")
	return data
}
