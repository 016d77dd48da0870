package store

import (
	"context"
	"time"
)

// SessionRecord is a finished practice session as persisted.
type SessionRecord struct {
	ID           int64
	Scenario     string
	Overall      float64
	Pron         float64
	Grammar      float64
	Fluency      float64
	Vocabulary   float64
	Comment      string
	DurationMin  float64
	CreatedAt    time.Time
}

// Profile is the single learner profile row. Moving averages are
// exponentially weighted; a fresh profile has zero averages and
// SessionsCount 0.
type Profile struct {
	Level          int
	TargetCEFR     string
	MAPron         float64
	MAGrammar      float64
	MAFluency      float64
	MAVocabulary   float64
	MAOverall      float64
	SessionsCount  int
	LastObjectives string
}

// PlanItem is one entry of the study plan queue.
type PlanItem struct {
	ID       int64
	OrderIdx int
	Scenario string
	Focus    string
	Level    int
	Prompt   string
	Done     bool
}

// LLMEvent records one provider round trip for the event log.
type LLMEvent struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMS    int64
	Success      bool
	ErrorMessage string
}

// LLMEventRow is a persisted event with its identity columns.
type LLMEventRow struct {
	ID        int64
	CreatedAt time.Time
	LLMEvent
}

// LLMUsage aggregates token usage per request purpose.
type LLMUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMS float64
}

// Stats summarises the session history for the dashboard.
type Stats struct {
	Sessions     int
	TotalMinutes float64
	AvgOverall   float64
	BestOverall  float64
}

// SaveResult reports the profile side effects of saving a session.
type SaveResult struct {
	SessionID int64
	LeveledUp bool
	LeveledDn bool
	NewLevel  int
}

type SessionRepo interface {
	// SaveSession persists the session and folds its scores into the
	// profile moving averages in the same transaction.
	SaveSession(ctx context.Context, rec SessionRecord) (SaveResult, error)
	RecentSessions(ctx context.Context, limit int) ([]SessionRecord, error)
	Stats(ctx context.Context) (Stats, error)
}

type ProfileRepo interface {
	Get(ctx context.Context) (Profile, error)
	SetObjectives(ctx context.Context, objectives string) error
}

type PlanRepo interface {
	FirstOpenItem(ctx context.Context) (*PlanItem, error)
	AppendItems(ctx context.Context, items []PlanItem) error
	CompleteItem(ctx context.Context, id int64) error
	OpenCount(ctx context.Context) (int, error)
}

type EventRepo interface {
	Record(ctx context.Context, ev LLMEvent) error
	RecentEvents(ctx context.Context, limit int) ([]LLMEventRow, error)
	UsageByPurpose(ctx context.Context) ([]LLMUsage, error)
}
