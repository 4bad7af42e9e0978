package models

import "encoding/json"

type PatientStatus string

const (
	PatientStable         PatientStatus = "Stable"
	PatientNeedsAttention PatientStatus = "Needs Attention"
	PatientImproving      PatientStatus = "Improving"
	PatientCritical       PatientStatus = "Critical"
)

var PatientStatuses = []PatientStatus{PatientStable, PatientNeedsAttention, PatientImproving, PatientCritical}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityNormal Priority = "Normal"
	PriorityLow    Priority = "Low"
)

var Priorities = []Priority{PriorityHigh, PriorityNormal, PriorityLow}

// Rank orders priorities for display, highest first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityNormal:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// PatientRecord is a nurse's monitoring entry for one admitted patient.
type PatientRecord struct {
	ID       string        `json:"id,omitempty"`
	Name     string        `json:"name"`
	Room     string        `json:"room"`
	Status   PatientStatus `json:"status"`
	Priority Priority      `json:"priority"`
	Notes    string        `json:"notes"`
}

func (p *PatientRecord) UnmarshalJSON(data []byte) error {
	type plain PatientRecord
	aux := struct {
		*plain
		MongoID string `json:"_id"`
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = aux.MongoID
	}
	return nil
}

type ShiftStats struct {
	PatientsAttended        int `json:"patients_attended"`
	MedicationsAdministered int `json:"medications_administered"`
	VitalsRecorded          int `json:"vitals_recorded"`
	NotesUpdated            int `json:"notes_updated"`
}

// ShiftSummary is the shift-stats response: counters plus handover notes.
type ShiftSummary struct {
	Stats ShiftStats `json:"stats"`
	Notes []string   `json:"notes"`
}
