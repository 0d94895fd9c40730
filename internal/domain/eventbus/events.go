package eventbus

import "time"

// Topics published on the bus.
const (
	// TopicReportCompleted fires after a report has been generated and the
	// session state updated.
	TopicReportCompleted = "report:completed"
	// TopicReportExported fires after a text or PDF export was produced.
	TopicReportExported = "report:exported"
	// TopicSessionCleared fires when a session's current report is discarded.
	TopicSessionCleared = "session:cleared"
)

// ReportCompletedEvent is the payload for TopicReportCompleted.
type ReportCompletedEvent struct {
	SessionID   string
	FeatureKey  string
	ReportType  string
	GeneratedAt time.Time
}

// ReportExportedEvent is the payload for TopicReportExported.
type ReportExportedEvent struct {
	SessionID string
	Format    string
	Filename  string
}

// SessionClearedEvent is the payload for TopicSessionCleared.
type SessionClearedEvent struct {
	SessionID string
}
