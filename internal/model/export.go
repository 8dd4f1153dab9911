package model

import "time"

// ProgressExport is the top-level JSON structure written by `progress export`.
type ProgressExport struct {
	Student    string          `json:"student"`
	Email      string          `json:"email"`
	ExportedAt time.Time       `json:"exported_at"`
	Stats      ProgressStats   `json:"stats"`
	History    []ProgressEntry `json:"history"`
}
