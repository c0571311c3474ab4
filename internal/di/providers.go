package di

import (
	"context"
	"fmt"
	"time"

	"CrediTech/internal/domain/repository"
	"CrediTech/internal/handler/api"
	internalrepo "CrediTech/internal/repository"
	"CrediTech/internal/service/bcb"
	icache "CrediTech/internal/service/cache"
	"CrediTech/internal/service/ratelimit"
	"CrediTech/internal/services/cluster"
	"CrediTech/internal/services/forecast"
	"CrediTech/internal/services/history"
	"CrediTech/internal/services/model"
	"CrediTech/internal/services/risk"
	"CrediTech/internal/usecase"
	pkgch "CrediTech/pkg/clickhouse"
	"CrediTech/pkg/config"
	xhttp "CrediTech/pkg/http"
	pkgkafka "CrediTech/pkg/kafka"
	applogger "CrediTech/pkg/logger"
	"CrediTech/pkg/metrics"
	"CrediTech/pkg/server"
	"CrediTech/pkg/util"
)

// ProvideLogger builds the application logger from the logging section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideRand returns the single seeded source shared by every random draw.
func ProvideRand(cfg *config.Config) *util.Rand {
	return util.NewRand(cfg.Analytics.Seed)
}

// ProvideSeriesCache caches raw SGS payloads in memory, backed by Redis when enabled.
func ProvideSeriesCache(cfg *config.Config, l *applogger.Logger) (icache.BytesCache, func()) {
	if !cfg.Cache.Redis.Enabled {
		return icache.NewTTLCache(), func() {}
	}
	rc := icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		l.Warn("redis unreachable; series cache degrades to misses", applogger.Error(err))
	}
	return icache.NewLayeredCache(rc, 10*time.Minute), func() { _ = rc.Close() }
}

// ProvideSeriesSource creates the central bank SGS client.
func ProvideSeriesSource(cfg *config.Config, cache icache.BytesCache, l *applogger.Logger) repository.SeriesSource {
	return bcb.New(cfg.BCB.BaseURL, cfg.BCB.Timeout,
		bcb.WithRetries(cfg.BCB.Retries),
		bcb.WithCache(cache, cfg.BCB.CacheTTL),
		bcb.WithLogger(l),
	)
}

func ProvideHistoryStore() *history.Store {
	return history.NewStore()
}

func ProvideGenerator(cfg *config.Config, rng *util.Rand) *history.Generator {
	return history.NewGenerator(rng, cfg.Analytics.SyntheticDays, time.Now)
}

func ProvideLoader(
	cfg *config.Config,
	source repository.SeriesSource,
	gen *history.Generator,
	store *history.Store,
	m repository.Metrics,
	l *applogger.Logger,
) *history.Loader {
	return history.NewLoader(source, gen, store,
		history.LoaderConfig{
			PolicySeriesID: cfg.BCB.PolicySeriesID,
			PriceSeriesID:  cfg.BCB.PriceSeriesID,
			FetchTimeout:   cfg.BCB.Timeout,
			HistoryYears:   cfg.BCB.HistoryYears,
		},
		history.WithPacer(history.SleepPacer{Delay: cfg.BCB.InterFetchDelay}),
		history.WithLoaderLogger(l),
		history.WithLoaderMetrics(m),
	)
}

func ProvideRegistry(cfg *config.Config, store *history.Store, rng *util.Rand, l *applogger.Logger, m repository.Metrics) *model.Registry {
	t := cfg.Analytics.Training
	return model.NewRegistry(store, model.TrainConfig{
		Epochs:          t.Epochs,
		BatchSize:       t.BatchSize,
		LearningRate:    t.LearningRate,
		ValidationSplit: t.ValidationSplit,
		Dropout:         t.Dropout,
	}, rng, l, m)
}

func ProvideForecaster(reg *model.Registry, rng *util.Rand, m repository.Metrics) *forecast.Engine {
	return forecast.NewEngine(reg, rng, time.Now, m)
}

func ProvideClusterer(cfg *config.Config, rng *util.Rand, l *applogger.Logger) *cluster.Clusterer {
	c := cfg.Analytics.Clustering
	return cluster.NewClusterer(cluster.Config{K: c.K, Population: c.Population, MaxIterations: c.MaxIterations}, rng, l)
}

func ProvideClassifier(c *cluster.Clusterer) *cluster.Classifier {
	return cluster.NewClassifier(c)
}

func ProvideScorer(l *applogger.Logger, m repository.Metrics) *risk.Scorer {
	return risk.NewScorer(l, m)
}

func ProvideComparator(cfg *config.Config, rng *util.Rand) *risk.HistoryComparator {
	return risk.NewHistoryComparator(cfg.Analytics.HistorySamples, rng)
}

// ProvideHistoryArchive connects to ClickHouse and creates the archive schema
// when enabled. A failed connection is logged and archiving is disabled.
func ProvideHistoryArchive(cfg *config.Config, l *applogger.Logger) (repository.HistoryArchive, func()) {
	if !cfg.ClickHouse.Enabled {
		return repository.NoopArchive{}, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ch := cfg.ClickHouse
	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithAsyncInsert(ch.AsyncInsert, ch.WaitForAsync),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout, ch.WriteTimeout),
		pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
	)
	if err != nil {
		l.Warn("clickhouse unavailable; history archive disabled", applogger.Error(err))
		return repository.NoopArchive{}, func() {}
	}
	if err := client.InitSchema(ctx, internalrepo.Schema(ch.Database)); err != nil {
		l.Warn("clickhouse schema failed; history archive disabled", applogger.Error(err))
		_ = client.Close()
		return repository.NoopArchive{}, func() {}
	}
	return internalrepo.NewCHHistoryArchive(client, ch.Database, l), func() { _ = client.Close() }
}

// ProvideEventPublisher publishes analytics events to Kafka when enabled and
// attaches the error digest collector to the same producer.
func ProvideEventPublisher(cfg *config.Config, l *applogger.Logger) (repository.EventPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return repository.NoopPublisher{}, func() {}, nil
	}
	k := cfg.Kafka
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithBatching(k.Producer.BatchSize, k.Producer.BatchBytes, k.Producer.Linger),
		pkgkafka.WithTimeouts(k.Producer.WriteTimeout, k.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(k.Producer.MaxAttempts),
		pkgkafka.WithAsync(k.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaPublisher(producer, k.EventsTopic)

	if c := cfg.Logging.Collector; c.Enabled {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   c.Interval,
			CountThreshold: c.Threshold,
			Topic:          c.Topic,
			Publisher:      pub,
		})
	}
	cleanup := func() {
		l.RemoveCollector()
		_ = pub.Close()
	}
	return internalrepo.NewLoggingPublisher(pub, l), cleanup, nil
}

func ProvidePipeline(
	cfg *config.Config,
	loader *history.Loader,
	reg *model.Registry,
	cl *cluster.Clusterer,
	archive repository.HistoryArchive,
	events repository.EventPublisher,
	l *applogger.Logger,
) *usecase.Pipeline {
	return usecase.NewPipeline(cfg.Analytics.Categories, loader, reg, cl, archive, events, l)
}

func ProvideProfileAnalysis(s *risk.Scorer, c *cluster.Classifier, h *risk.HistoryComparator) *usecase.ProfileAnalysis {
	return usecase.NewProfileAnalysis(s, c, h)
}

func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillRPS)
}

func ProvideAnalyticsHandler(
	l *applogger.Logger,
	p *usecase.Pipeline,
	f *forecast.Engine,
	c *cluster.Classifier,
	s *risk.Scorer,
	h *risk.HistoryComparator,
	a *usecase.ProfileAnalysis,
	rl *ratelimit.Limiter,
) *api.AnalyticsHandler {
	return api.NewAnalyticsHandler(l, p, f, c, s, h, a, rl)
}

func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.AnalyticsHandler) *xhttp.Server {
	return xhttp.NewServer([]xhttp.Handler{h},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithMetrics(cfg.Metrics.Enabled),
		xhttp.WithLogger(l),
	)
}

// ProvideKafkaConsumer returns nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	c := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(c.GroupID),
		pkgkafka.WithConsumerWorkers(c.Workers),
		pkgkafka.WithConsumerBufferSize(c.BufferSize),
		pkgkafka.WithConsumerRetry(c.RetryMax, c.BackoffMin, c.BackoffMax),
		pkgkafka.WithConsumerDLQ(c.DLQTopic),
		pkgkafka.WithConsumerFetch(c.MinBytes, c.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

func ProvideRefreshHandler(cfg *config.Config, p *usecase.Pipeline, m repository.Metrics, l *applogger.Logger) pkgkafka.MessageHandler {
	return usecase.NewKafkaRefreshHandler(cfg.Kafka.CommandTopic, usecase.PipelineRefresher{P: p}, m, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	p *usecase.Pipeline,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	refresh pkgkafka.MessageHandler,
) *server.App {
	return server.New(cfg, l, p, srv, consumer, refresh)
}
