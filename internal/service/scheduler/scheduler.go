package scheduler

import (
	"context"
	"time"

	"CoinPulse/internal/services/risk"
	"CoinPulse/internal/usecase"
	pkgkafka "CoinPulse/pkg/kafka"
	applogger "CoinPulse/pkg/logger"
	pkgqueue "CoinPulse/pkg/queue"

	"github.com/robfig/cron/v3"
)

// Scheduler recomputes the risk level for every supported asset at the two
// daily refresh boundaries, so API reads between boundaries hit a warm
// cache. Computed levels are optionally published to Kafka.
//
// When a redis-backed queue is attached, each boundary enqueues one refresh
// job per asset and the queue workers execute them with retry; otherwise
// refreshes run inline on the cron goroutine.
type Scheduler struct {
	cron     *cron.Cron
	uc       *usecase.AnalyticsUseCase
	symbols  []string
	barDepth int
	producer *pkgkafka.Producer
	topic    string
	queue    *pkgqueue.RedisQueue
	l        *applogger.Logger
}

type Option func(*Scheduler)

// WithPublisher publishes each refreshed risk level to the given topic.
func WithPublisher(p *pkgkafka.Producer, topic string) Option {
	return func(s *Scheduler) {
		s.producer = p
		s.topic = topic
	}
}

// WithBarDepth sets how much daily history each refresh loads.
func WithBarDepth(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.barDepth = n
		}
	}
}

func New(uc *usecase.AnalyticsUseCase, symbols []string, l *applogger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(risk.RefreshZone)),
		uc:       uc,
		symbols:  symbols,
		barDepth: 2000,
		l:        l,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetQueue routes boundary refreshes through a redis-backed job queue.
// The queue's lifecycle is owned by the scheduler; a refresh job handler
// is registered here.
func (s *Scheduler) SetQueue(q *pkgqueue.RedisQueue) {
	s.queue = q
	q.RegisterJob(&RefreshJob{s: s})
}

// Start registers the boundary jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.queue != nil {
		if err := s.queue.Start(); err != nil {
			return err
		}
	}
	if _, err := s.cron.AddFunc("0 7 * * *", s.refreshAll); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 17 * * *", s.refreshAll); err != nil {
		return err
	}
	s.cron.Start()
	s.l.Info("risk refresh scheduler started", applogger.Strings("symbols", s.symbols))
	return nil
}

// Stop halts the cron loop and waits for a running refresh to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if s.queue != nil {
		return s.queue.Stop(ctx)
	}
	return nil
}

func (s *Scheduler) refreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, symbol := range s.symbols {
		if s.queue != nil {
			err := s.queue.Enqueue(ctx, TypeRiskRefresh, RefreshPayload{Symbol: symbol, BarDepth: s.barDepth})
			if err != nil {
				s.l.Error("risk refresh enqueue failed",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			continue
		}
		if err := s.refreshOne(ctx, symbol, s.barDepth); err != nil {
			s.l.Error("scheduled risk refresh failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
	}
}

// refreshOne recomputes one asset and optionally publishes the result.
func (s *Scheduler) refreshOne(ctx context.Context, symbol string, barDepth int) error {
	cur, err := s.uc.CurrentRisk(ctx, symbol, barDepth)
	if err != nil {
		return err
	}
	s.l.Info("risk refreshed",
		applogger.String("symbol", symbol),
		applogger.Float64("risk_level", cur.RiskLevel),
		applogger.String("zone", string(cur.Zone)),
	)
	if s.producer == nil {
		return nil
	}
	err = s.producer.Publish(ctx, s.topic, []byte(symbol), map[string]interface{}{
		"symbol":      cur.Symbol,
		"computed_at": cur.ComputedAt.Unix(),
		"price":       cur.Price,
		"risk_level":  cur.RiskLevel,
		"zone":        string(cur.Zone),
		"r_squared":   cur.RSquared,
		"sample_size": cur.SampleSize,
	})
	if err != nil {
		s.l.Warn("risk publish failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}
	return nil
}
