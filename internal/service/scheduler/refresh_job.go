package scheduler

import (
	"context"

	pkgqueue "CoinPulse/pkg/queue"
)

// TypeRiskRefresh is the queue message type for a single-asset refresh.
const TypeRiskRefresh = "risk.refresh"

// RefreshPayload identifies one asset refresh request.
type RefreshPayload struct {
	Symbol   string `json:"symbol"`
	BarDepth int    `json:"bar_depth"`
}

// RefreshJob executes one asset refresh pulled off the queue. Failed
// refreshes are retried by the queue before landing in the dead letter key.
type RefreshJob struct {
	s *Scheduler
}

func (j *RefreshJob) Name() string { return "risk_refresh" }

func (j *RefreshJob) Type() string { return TypeRiskRefresh }

func (j *RefreshJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := pkgqueue.ParsePayload[RefreshPayload](payload)
	if err != nil {
		return err
	}
	depth := p.BarDepth
	if depth <= 0 {
		depth = j.s.barDepth
	}
	return j.s.refreshOne(ctx, p.Symbol, depth)
}

var _ pkgqueue.Job = (*RefreshJob)(nil)
