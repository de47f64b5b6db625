package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/stipend/event"
	"github.com/xraph/stipend/id"
	"github.com/xraph/stipend/metrics"
	"github.com/xraph/stipend/server"
	"github.com/xraph/stipend/treasury"
	"github.com/xraph/stipend/types"
)

// treasuryRowID is the fixed key of the single treasury row.
const treasuryRowID = "treasury"

// ==================== Treasury models ====================

type treasuryModel struct {
	grove.BaseModel `grove:"table:stipend_treasury"`

	ID         string    `grove:"id,pk"`
	Authority  string    `grove:"authority"`
	RewardPool int64     `grove:"reward_pool"`
	Paused     bool      `grove:"paused"`
	CreatedAt  time.Time `grove:"created_at"`
	UpdatedAt  time.Time `grove:"updated_at"`
}

func toTreasuryModel(t *treasury.Treasury) *treasuryModel {
	return &treasuryModel{
		ID:         treasuryRowID,
		Authority:  t.Authority.String(),
		RewardPool: int64(t.RewardPool.Uint64()),
		Paused:     t.Paused,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func fromTreasuryModel(m *treasuryModel) *treasury.Treasury {
	return &treasury.Treasury{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Authority:  types.Identity(m.Authority),
		RewardPool: types.Balance(uint64(m.RewardPool)),
		Paused:     m.Paused,
	}
}

// ==================== Server models ====================

type serverModel struct {
	grove.BaseModel `grove:"table:stipend_servers"`

	ID                string    `grove:"id,pk"`
	Owner             string    `grove:"owner"`
	Active            bool      `grove:"active"`
	RegisteredAt      int64     `grove:"registered_at"`
	GracePeriodEnd    int64     `grove:"grace_period_end"`
	PendingRewards    int64     `grove:"pending_rewards"`
	LastMetricsUpdate int64     `grove:"last_metrics_update"`
	CreatedAt         time.Time `grove:"created_at"`
	UpdatedAt         time.Time `grove:"updated_at"`
}

func toServerModel(rec *server.Record) *serverModel {
	return &serverModel{
		ID:                rec.ID,
		Owner:             rec.Owner.String(),
		Active:            rec.Active,
		RegisteredAt:      rec.RegisteredAt,
		GracePeriodEnd:    rec.GracePeriodEnd,
		PendingRewards:    int64(rec.PendingRewards.Uint64()),
		LastMetricsUpdate: rec.LastMetricsUpdate,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}
}

func fromServerModel(m *serverModel) *server.Record {
	return &server.Record{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                m.ID,
		Owner:             types.Identity(m.Owner),
		Active:            m.Active,
		RegisteredAt:      m.RegisteredAt,
		GracePeriodEnd:    m.GracePeriodEnd,
		PendingRewards:    types.Balance(uint64(m.PendingRewards)),
		LastMetricsUpdate: m.LastMetricsUpdate,
	}
}

// ==================== Report models ====================

type reportModel struct {
	grove.BaseModel `grove:"table:stipend_reports"`

	ID             string `grove:"id,pk"`
	ServerID       string `grove:"server_id"`
	Uptime         int    `grove:"uptime"`
	TasksCompleted int64  `grove:"tasks_completed"`
	Points         int64  `grove:"points"`
	SubmittedAt    int64  `grove:"submitted_at"`
}

func toReportModel(rep *metrics.Report) *reportModel {
	return &reportModel{
		ID:             rep.ID.String(),
		ServerID:       rep.ServerID,
		Uptime:         int(rep.Uptime),
		TasksCompleted: int64(rep.TasksCompleted),
		Points:         int64(rep.Points),
		SubmittedAt:    rep.SubmittedAt,
	}
}

func fromReportModel(m *reportModel) (*metrics.Report, error) {
	repID, err := id.ParseReportID(m.ID)
	if err != nil {
		return nil, err
	}

	return &metrics.Report{
		ID:             repID,
		ServerID:       m.ServerID,
		Uptime:         uint8(m.Uptime),
		TasksCompleted: uint64(m.TasksCompleted),
		Points:         uint64(m.Points),
		SubmittedAt:    m.SubmittedAt,
	}, nil
}

// ==================== Event models ====================

type eventModel struct {
	grove.BaseModel `grove:"table:stipend_events"`

	ID          string            `grove:"id,pk"`
	Kind        string            `grove:"kind"`
	ServerID    string            `grove:"server_id"`
	Actor       string            `grove:"actor"`
	Amount      int64             `grove:"amount"`
	PoolBalance int64             `grove:"pool_balance"`
	Metadata    map[string]string `grove:"metadata,type:jsonb"`
	Timestamp   int64             `grove:"timestamp"`
}

func toEventModel(e *event.Event) *eventModel {
	return &eventModel{
		ID:          e.ID.String(),
		Kind:        string(e.Kind),
		ServerID:    e.ServerID,
		Actor:       e.Actor.String(),
		Amount:      int64(e.Amount),
		PoolBalance: int64(e.PoolBalance),
		Metadata:    e.Metadata,
		Timestamp:   e.Timestamp,
	}
}

func fromEventModel(m *eventModel) (*event.Event, error) {
	evtID, err := id.ParseEventID(m.ID)
	if err != nil {
		return nil, err
	}

	return &event.Event{
		ID:          evtID,
		Kind:        event.Kind(m.Kind),
		ServerID:    m.ServerID,
		Actor:       types.Identity(m.Actor),
		Amount:      uint64(m.Amount),
		PoolBalance: uint64(m.PoolBalance),
		Metadata:    m.Metadata,
		Timestamp:   m.Timestamp,
	}, nil
}
