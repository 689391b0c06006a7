package di

import (
	"context"
	"fmt"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	"CoinPulse/internal/handler/api"
	mid "CoinPulse/internal/middleware"
	internalrepo "CoinPulse/internal/repository"
	icache "CoinPulse/internal/service/cache"
	"CoinPulse/internal/service/factors"
	"CoinPulse/internal/service/scheduler"
	"CoinPulse/internal/service/stream"
	"CoinPulse/internal/services/regime"
	"CoinPulse/internal/services/risk"
	"CoinPulse/internal/usecase"
	pkgcache "CoinPulse/pkg/cache"
	pkgch "CoinPulse/pkg/clickhouse"
	"CoinPulse/pkg/config"
	pkgkafka "CoinPulse/pkg/kafka"
	applogger "CoinPulse/pkg/logger"
	"CoinPulse/pkg/metrics"
	pkgqueue "CoinPulse/pkg/queue"
	"CoinPulse/pkg/server"
)

// ProvideLogger creates the shared application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "console"
	if cfg.Environment == "production" {
		format = "json"
	}
	l, err := applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client and ensures schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS coinpulse",
		`CREATE TABLE IF NOT EXISTS coinpulse.rt_ticks_raw (
			ts DateTime64(3), symbol String, price Float64, volume Float64,
			source String, event_id String, seq UInt64, org_id String
		) ENGINE=MergeTree ORDER BY (symbol, ts)`,
		`CREATE TABLE IF NOT EXISTS coinpulse.bars_1m (
			bucket DateTime, symbol String,
			open Float64, high Float64, low Float64, close Float64, vol Float64
		) ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)`,
		`CREATE MATERIALIZED VIEW IF NOT EXISTS coinpulse.bars_1m_mv TO coinpulse.bars_1m AS
			SELECT toStartOfMinute(ts) AS bucket, symbol,
				argMin(price, ts) AS open, max(price) AS high,
				min(price) AS low, argMax(price, ts) AS close,
				sum(volume) AS vol
			FROM coinpulse.rt_ticks_raw GROUP BY bucket, symbol`,
		`CREATE TABLE IF NOT EXISTS coinpulse.bars_1h (
			bucket DateTime, symbol String,
			open Float64, high Float64, low Float64, close Float64, vol Float64
		) ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)`,
		`CREATE MATERIALIZED VIEW IF NOT EXISTS coinpulse.bars_1h_mv TO coinpulse.bars_1h AS
			SELECT toStartOfHour(ts) AS bucket, symbol,
				argMin(price, ts) AS open, max(price) AS high,
				min(price) AS low, argMax(price, ts) AS close,
				sum(volume) AS vol
			FROM coinpulse.rt_ticks_raw GROUP BY bucket, symbol`,
		`CREATE TABLE IF NOT EXISTS coinpulse.bars_1d (
			bucket DateTime, symbol String,
			open Float64, high Float64, low Float64, close Float64, vol Float64
		) ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)`,
		`CREATE MATERIALIZED VIEW IF NOT EXISTS coinpulse.bars_1d_mv TO coinpulse.bars_1d AS
			SELECT toStartOfDay(ts) AS bucket, symbol,
				argMin(price, ts) AS open, max(price) AS high,
				min(price) AS low, argMax(price, ts) AS close,
				sum(volume) AS vol
			FROM coinpulse.rt_ticks_raw GROUP BY bucket, symbol`,
		`CREATE TABLE IF NOT EXISTS coinpulse.sentiment_daily (
			day DateTime, value Float64
		) ENGINE=ReplacingMergeTree ORDER BY day`,
		`CREATE TABLE IF NOT EXISTS coinpulse.risk_confidence (
			id String, symbol String, day DateTime,
			r_squared Float64, sample_size Int32,
			risk_level Float64, price Float64
		) ENGINE=MergeTree ORDER BY (symbol, day)`,
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideTradeStorage creates ClickHouse storage repository.
func ProvideTradeStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	source := cfg.Stream.Source
	if source == "" {
		source = "stream"
	}
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".rt_ticks_raw", source)
}

// ProvideTradePublisher creates Kafka publisher repository.
func ProvideTradePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaTicksHandler registers handler for ticks topic.
func ProvideKafkaTicksHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaTicksHandler {
	return usecase.NewKafkaTicksHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideKafkaFactorsHandler registers handler for the factors topic.
func ProvideKafkaFactorsHandler(
	cache *factors.Cache,
	rotation *regime.RotationTracker,
	store *internalrepo.CHBarStore,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.KafkaFactorsHandler {
	return usecase.NewKafkaFactorsHandler(cfg.Kafka.FactorsTopic, cache, rotation, store, metrics)
}

// ProvideBarStore creates the ClickHouse bar and sentiment store.
func ProvideBarStore(chClient *pkgch.Client, l *applogger.Logger) *internalrepo.CHBarStore {
	store := internalrepo.NewCHBarStore(chClient)
	store.SetLogger(l)
	return store
}

// ProvideFactorCache creates the shared factor snapshot cache.
func ProvideFactorCache() *factors.Cache {
	return factors.NewCache()
}

// ProvideRotationTracker creates the capital-rotation tracker.
func ProvideRotationTracker() *regime.RotationTracker {
	return regime.NewRotationTracker()
}

// ProvideRegimeScorer creates the emotion and engagement scorer.
func ProvideRegimeScorer() *regime.Scorer {
	return regime.NewScorer()
}

// ProvideRiskEngine creates the risk engine for the configured assets.
func ProvideRiskEngine(cfg *config.Config, chClient *pkgch.Client, l *applogger.Logger) *risk.Engine {
	assets := make([]risk.AssetConfig, 0, len(cfg.Risk.Assets))
	for _, a := range cfg.Risk.Assets {
		assets = append(assets, risk.AssetConfig{
			Symbol:      a.Symbol,
			DisplayName: a.DisplayName,
			BarsPerYear: a.BarsPerYear,
			MinBars:     a.MinBars,
		})
	}

	table := cfg.Risk.ConfidenceTable
	if table == "" {
		table = cfg.ClickHouse.Database + ".risk_confidence"
	}
	confLog := internalrepo.NewCHConfidenceLog(chClient.DB(), table, l)

	opts := []risk.Option{
		risk.WithConfidenceLog(confLog),
		risk.WithLogger(l),
	}
	if w := cfg.Risk.Weights; w.Regression > 0 {
		opts = append(opts, risk.WithFactorWeights(models.RiskFactorWeights{
			Regression:      w.Regression,
			Funding:         w.Funding,
			Volatility:      w.Volatility,
			AppStore:        w.AppStore,
			Search:          w.Search,
			AltcoinSeason:   w.AltcoinSeason,
			CapitalRotation: w.CapitalRotation,
		}))
	}
	return risk.NewEngine(assets, opts...)
}

// ProvideFactorPoller creates the external factor HTTP poller.
func ProvideFactorPoller(
	cfg *config.Config,
	cache *factors.Cache,
	rotation *regime.RotationTracker,
	store *internalrepo.CHBarStore,
	l *applogger.Logger,
) *factors.Poller {
	return factors.NewPoller(factors.PollerConfig{
		FundingURL:   cfg.Factors.FundingURL,
		DominanceURL: cfg.Factors.DominanceURL,
		SentimentURL: cfg.Factors.SentimentURL,
		AltseasonURL: cfg.Factors.AltseasonURL,
		AttentionURL: cfg.Factors.AttentionURL,
		Interval:     cfg.Factors.PollInterval,
		Timeout:      cfg.Factors.Timeout,
	}, cache, rotation, store, l)
}

// ProvideAnalyticsUseCase assembles the analytics pipeline.
func ProvideAnalyticsUseCase(
	store *internalrepo.CHBarStore,
	engine *risk.Engine,
	scorer *regime.Scorer,
	cache *factors.Cache,
) *usecase.AnalyticsUseCase {
	return usecase.NewAnalyticsUseCase(store, store, engine, scorer, cache)
}

// ProvideBarsUseCase creates the bar retrieval use case.
func ProvideBarsUseCase(store *internalrepo.CHBarStore) *usecase.BarsUseCase {
	return usecase.NewBarsUseCase(store)
}

// ProvideRedisCache creates the shared Redis cache when enabled. A nil
// return means redis is off and callers fall back to in-process behavior.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, nil
	}
	return pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
	)
}

// ProvideScheduler creates the boundary refresh scheduler. With redis
// available, refreshes run as queue jobs with retry instead of inline.
func ProvideScheduler(
	uc *usecase.AnalyticsUseCase,
	producer *pkgkafka.Producer,
	rc *pkgcache.RedisCache,
	cfg *config.Config,
	l *applogger.Logger,
) *scheduler.Scheduler {
	symbols := make([]string, 0, len(cfg.Risk.Assets))
	for _, a := range cfg.Risk.Assets {
		symbols = append(symbols, a.Symbol)
	}
	opts := []scheduler.Option{}
	if cfg.Risk.BarDepth > 0 {
		opts = append(opts, scheduler.WithBarDepth(cfg.Risk.BarDepth))
	}
	if cfg.Kafka.RiskTopic != "" {
		opts = append(opts, scheduler.WithPublisher(producer, cfg.Kafka.RiskTopic))
	}
	s := scheduler.New(uc, symbols, l, opts...)
	if rc != nil {
		q := pkgqueue.NewRedisQueue(l, &pkgqueue.QueueConfig{
			Workers:    2,
			QueueSize:  64,
			RetryLimit: 3,
			RetryDelay: 30 * time.Second,
		}, rc.Client(), pkgqueue.ModeProducerConsumer)
		s.SetQueue(q)
	}
	return s
}

// ProvideHTTPHandler creates the Echo analytics handler with response caching.
func ProvideHTTPHandler(
	uc *usecase.AnalyticsUseCase,
	bars *usecase.BarsUseCase,
	rc *pkgcache.RedisCache,
	cfg *config.Config,
	l *applogger.Logger,
) *api.AnalyticsEchoHandler {
	h := api.NewAnalyticsEchoHandler(l, uc, bars)
	if rc != nil {
		h.SetCache(icache.NewServiceCache(pkgcache.NewLayeredCache(rc)))
	} else {
		h.SetCache(icache.NewServiceCache(pkgcache.NewMemoryCache()))
	}
	h.SetCacheTTL(cfg.Cache.TTL)
	return h
}

// ProvideMarketStream creates the exchange WebSocket stream.
func ProvideMarketStream(cfg *config.Config) repository.MarketStream {
	return stream.New(
		cfg.Stream.APIKey,
		cfg.Stream.WebSocketURL,
		cfg.Stream.Symbols,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
	)
}

// ProvideTradeProcessor creates trade processor use case.
func ProvideTradeProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.TradeProcessor {
	return usecase.NewTradeProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideTradeCollector creates trade collector use case.
func ProvideTradeCollector(
	stream repository.MarketStream,
	processor *usecase.TradeProcessor,
	metrics repository.Metrics,
) *usecase.TradeCollector {
	// Build middleware pipeline between WebSocket and Kafka
	pipe := mid.NewRealtimePipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewTradeCollector(stream, processor, metrics, pipe)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.TradeCollector,
	consumer *pkgkafka.Consumer,
	ticks *usecase.KafkaTicksHandler,
	facts *usecase.KafkaFactorsHandler,
	chClient *pkgch.Client,
	sched *scheduler.Scheduler,
	poller *factors.Poller,
	httpHandler *api.AnalyticsEchoHandler,
) *server.App {
	// Attach hook to consumer: example NoopHook for now; can be replaced via config
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, l, collector, consumer, ticks, facts, chClient, sched, poller)
	app.SetHTTPHandler(httpHandler)
	// attach trade processor to app for closing resources via collector
	if collector != nil {
		app.TradeProc = collector.Processor()
	}
	return app
}
