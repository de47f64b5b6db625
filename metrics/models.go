// Package metrics defines operational telemetry reports.
package metrics

import (
	"github.com/xraph/stipend/id"
)

// Report is one accepted metrics submission for a server.
//
// Uptime and TasksCompleted are descriptive telemetry: they are persisted
// and carried on the audit event, but only Points affects balances. Reports
// are never read back by the reward rules, so old ones can be purged freely.
type Report struct {
	ID             id.ReportID `json:"id"`
	ServerID       string      `json:"server_id"`
	Uptime         uint8       `json:"uptime"`
	TasksCompleted uint64      `json:"tasks_completed"`
	Points         uint64      `json:"points"`

	// SubmittedAt is the domain clock reading at acceptance, unix seconds.
	SubmittedAt int64 `json:"submitted_at"`
}

// MaxUptime is the highest accepted uptime percentage.
const MaxUptime = 100

// QueryOpts filters and pages report queries.
type QueryOpts struct {
	ServerID string
	Since    int64
	Until    int64
	Limit    int
	Offset   int
}
