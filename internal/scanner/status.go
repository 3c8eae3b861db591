package scanner

// Status is a point-in-time snapshot of the scan session. It is only ever
// handed out by value from the Coordinator; nothing outside the coordinator
// can mutate the live session.
type Status struct {
	Active          bool   `json:"active"`
	TotalCandidates int    `json:"totalCandidates"`
	Processed       int    `json:"processed"`
	CurrentPath     string `json:"currentPath"`
	LastError       string `json:"lastError,omitempty"`
}

// progressSink receives progress updates from a running scan. The
// Coordinator implements it over its guarded session; tests may pass nil.
type progressSink interface {
	begin(totalCandidates int)
	advance(processed int, currentPath string)
}

// nopSink is used when a Scanner runs without a coordinator.
type nopSink struct{}

func (nopSink) begin(int) {}

func (nopSink) advance(int, string) {}
