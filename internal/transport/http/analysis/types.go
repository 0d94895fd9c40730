package analysis

import "time"

// ReportPayload is the JSON form of the current report.
type ReportPayload struct {
	ReportText  string    `json:"report_text"`
	ReportType  string    `json:"report_type"`
	FeatureKey  string    `json:"feature_key"`
	GeneratedAt time.Time `json:"generated_at"`
}

// HistoryItem is one past report as shown in the history listing.
type HistoryItem struct {
	ReportType  string    `json:"report_type"`
	FeatureKey  string    `json:"feature_key"`
	ReportText  string    `json:"report_text"`
	GeneratedAt time.Time `json:"generated_at"`
}

// PatientPayload mirrors the patient details form.
type PatientPayload struct {
	ID        string `json:"id"`
	Age       string `json:"age"`
	Gender    string `json:"gender"`
	Physician string `json:"physician"`
}
