package session

import (
	"fmt"
	"testing"
	"time"
)

func TestStateSetResultKeepsHistoryBounded(t *testing.T) {
	st := NewState("s1")
	for i := 0; i < HistoryLimit+3; i++ {
		st.SetResult(&ReportResult{
			ReportText:  fmt.Sprintf("report %d", i),
			ReportType:  "X-ray Analysis",
			FeatureKey:  "xray",
			GeneratedAt: time.Now(),
		})
	}
	if len(st.History) != HistoryLimit {
		t.Fatalf("history length = %d, want %d", len(st.History), HistoryLimit)
	}
	// The three oldest reports must have been evicted.
	if st.History[0].ReportText != "report 3" {
		t.Fatalf("oldest retained entry = %q, want %q", st.History[0].ReportText, "report 3")
	}
	if st.Current == nil || st.Current.ReportText != fmt.Sprintf("report %d", HistoryLimit+2) {
		t.Fatalf("current result not the latest report: %+v", st.Current)
	}
}

func TestStateClearResultKeepsHistory(t *testing.T) {
	st := NewState("s2")
	st.SetResult(&ReportResult{ReportText: "only", ReportType: "CT Scan Analysis", FeatureKey: "ct", GeneratedAt: time.Now()})
	st.ClearResult()
	if st.Current != nil {
		t.Fatalf("expected current cleared")
	}
	if len(st.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(st.History))
	}
}

func TestRecentHistoryNewestFirst(t *testing.T) {
	st := NewState("s3")
	for i := 0; i < 3; i++ {
		st.SetResult(&ReportResult{ReportText: fmt.Sprintf("r%d", i), FeatureKey: "mri", GeneratedAt: time.Now()})
	}
	recent := st.RecentHistory()
	if len(recent) != 3 {
		t.Fatalf("recent length = %d", len(recent))
	}
	if recent[0].ReportText != "r2" || recent[2].ReportText != "r0" {
		t.Fatalf("unexpected order: %+v", recent)
	}
}

func TestSetPatient(t *testing.T) {
	st := NewState("s4")
	st.SetPatient(PatientInfo{ID: "P-100", Age: "54", Gender: "F", Physician: "Dr. Osei"})
	if st.Patient.ID != "P-100" || st.Patient.Physician != "Dr. Osei" {
		t.Fatalf("patient not stored: %+v", st.Patient)
	}
}
