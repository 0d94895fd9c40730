// Package session models the per-client analysis state: the patient details
// attached to exports, the most recent report, and a bounded history of
// earlier reports.
package session

import (
	"time"

	"medinsight-server-go/internal/domain/image"
)

// HistoryLimit bounds the number of retained reports per session. The oldest
// entry is evicted first.
const HistoryLimit = 10

// PatientInfo is optional metadata rendered into exported reports.
type PatientInfo struct {
	ID        string `json:"id"`
	Age       string `json:"age"`
	Gender    string `json:"gender"`
	Physician string `json:"physician"`
}

// ReportResult is a completed analysis: the generated text plus the inputs
// needed to reproduce the export.
type ReportResult struct {
	ReportText  string        `json:"report_text"`
	ReportType  string        `json:"report_type"`
	FeatureKey  string        `json:"feature_key"`
	Image       *image.Bitmap `json:"image,omitempty"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// HistoryEntry is the slimmed form of a past report kept in the session. The
// image is dropped so history stays cheap to serialize.
type HistoryEntry struct {
	ReportType  string    `json:"report_type"`
	FeatureKey  string    `json:"feature_key"`
	ReportText  string    `json:"report_text"`
	GeneratedAt time.Time `json:"generated_at"`
}

// State is the full serializable session payload.
type State struct {
	ID        string         `json:"id"`
	Patient   PatientInfo    `json:"patient"`
	Current   *ReportResult  `json:"current,omitempty"`
	History   []HistoryEntry `json:"history"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewState initializes an empty session.
func NewState(id string) *State {
	now := time.Now()
	return &State{
		ID:        id,
		History:   make([]HistoryEntry, 0, HistoryLimit),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetResult installs a new current report and appends it to history, evicting
// the oldest entry once the limit is reached.
func (s *State) SetResult(res *ReportResult) {
	s.Current = res
	s.History = append(s.History, HistoryEntry{
		ReportType:  res.ReportType,
		FeatureKey:  res.FeatureKey,
		ReportText:  res.ReportText,
		GeneratedAt: res.GeneratedAt,
	})
	if len(s.History) > HistoryLimit {
		s.History = s.History[len(s.History)-HistoryLimit:]
	}
	s.UpdatedAt = time.Now()
}

// ClearResult discards the current report. History is kept.
func (s *State) ClearResult() {
	s.Current = nil
	s.UpdatedAt = time.Now()
}

// SetPatient replaces the patient details.
func (s *State) SetPatient(p PatientInfo) {
	s.Patient = p
	s.UpdatedAt = time.Now()
}

// RecentHistory returns history entries newest first.
func (s *State) RecentHistory() []HistoryEntry {
	out := make([]HistoryEntry, len(s.History))
	for i, entry := range s.History {
		out[len(s.History)-1-i] = entry
	}
	return out
}
