package models

// ProgressUpdate is broadcast to websocket clients while a pass runs.
type ProgressUpdate struct {
	JobID    string  `json:"jobId"`
	RunID    string  `json:"run_id"`
	Message  string  `json:"message"`
	Progress float64 `json:"progress"`
	ItemID   int64   `json:"item_id"`
	Status   string  `json:"status"` // "in_progress", "completed", "failed"
	Done     bool    `json:"done"`
}
