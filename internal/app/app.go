package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/cafepos/internal/health"
	"github.com/vladislavdragonenkov/cafepos/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/cafepos/internal/metrics"
	"github.com/vladislavdragonenkov/cafepos/internal/service/catalog"
	"github.com/vladislavdragonenkov/cafepos/internal/service/checkout"
	"github.com/vladislavdragonenkov/cafepos/internal/service/history"
	"github.com/vladislavdragonenkov/cafepos/internal/service/notify"
	"github.com/vladislavdragonenkov/cafepos/internal/service/outbox"
	"github.com/vladislavdragonenkov/cafepos/internal/version"
)

const shutdownTimeout = 5 * time.Second

// App: собранный терминал: каталог, оформление, история и уведомления.
type App struct {
	Catalog     *catalog.Reader
	Writer      *checkout.Writer
	Notifier    *notify.Notifier
	History     *history.Service
	HistoryView *history.View

	cfg         Config
	logger      *log.Entry
	deps        runtimeDependencies
	producer    *kafka.Producer
	unsubscribe func()
	closeOnce   sync.Once
}

// New собирает приложение по конфигурации.
// Экран истории подписывается на завершение заказов и сразу загружается.
func New(ctx context.Context, cfg Config, logger *log.Entry) (*App, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger.WithField("layer", "storage"))
	if err != nil {
		return nil, err
	}

	// без брокера терминал продолжает работать, события ждут в outbox
	producer, _ := initKafkaProducer(cfg.Brokers(), logger)

	notifier := notify.NewNotifier(logger.WithField("layer", "notify"))
	historySvc := history.NewService(deps.historyRepo,
		history.WithLocation(loc),
		history.WithLogger(logger.WithField("layer", "history")),
	)
	view := history.NewView(historySvc)

	a := &App{
		Catalog: catalog.NewReader(deps.catalogRepo, logger.WithField("layer", "catalog")),
		Writer: checkout.NewWriter(deps.txManager,
			checkout.WithLocation(loc),
			checkout.WithLogger(logger.WithField("layer", "checkout")),
			checkout.WithMetrics(metrics.NewCheckoutMetrics()),
			checkout.WithPublisher(notifier),
		),
		Notifier:    notifier,
		History:     historySvc,
		HistoryView: view,
		cfg:         cfg,
		logger:      logger,
		deps:        deps,
		producer:    producer,
	}
	a.unsubscribe = notifier.Subscribe("history-view", view.OnOrderCompleted)

	if err := view.Refresh(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("initial history refresh: %w", err)
	}

	logger.WithFields(log.Fields{
		"storage":  cfg.StorageDriver,
		"timezone": loc.String(),
		"kafka":    producer != nil,
		"version":  version.GetVersion(),
	}).Info("pos terminal initialized")
	return a, nil
}

// NewCart возвращает пустую корзину для нового заказа.
func (a *App) NewCart() *domain.Cart {
	return domain.NewCart()
}

// Run обслуживает /metrics, /healthz, /livez, /readyz и запускает outbox worker.
// Возвращает ctx.Err() после остановки либо ошибку HTTP-сервера.
func (a *App) Run(ctx context.Context) error {
	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", a.deps.storagePing))
	healthHandler.RegisterChecker("outbox", healthcheck.NewOutboxBacklogChecker(a.deps.outboxRepo, a.cfg.OutboxMaxPendingAge))

	lis, err := net.Listen("tcp", a.cfg.MetricsAddr)
	if err != nil {
		return fmt.Errorf("listen ops server on %s: %w", a.cfg.MetricsAddr, err)
	}
	srv := &http.Server{
		Handler:           newOpsMux(healthHandler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("метрики доступны по адресу %s/metrics", lis.Addr())
		a.logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", lis.Addr(), lis.Addr(), lis.Addr())
		errCh <- srv.Serve(lis)
	}()

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	var wg sync.WaitGroup
	if worker := a.newOutboxWorker(); worker != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(workerCtx)
		}()
	} else {
		a.logger.Info("kafka is not configured, outbox worker disabled")
	}

	select {
	case <-ctx.Done():
		a.logger.Info("получен сигнал остановки, останавливаем терминал")
		shutdownHTTP(srv, a.logger)
		stopWorker()
		wg.Wait()
		return ctx.Err()
	case err := <-errCh:
		stopWorker()
		wg.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Close отписывает экран истории и освобождает producer и хранилище.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		if a.unsubscribe != nil {
			a.unsubscribe()
		}
		closeKafka(a.producer, a.logger)
		if closeErr := a.deps.close(); closeErr != nil {
			err = fmt.Errorf("close storage: %w", closeErr)
		}
	})
	return err
}

func (a *App) newOutboxWorker() *outbox.Worker {
	if a.producer == nil {
		return nil
	}
	return outbox.NewWorker(a.deps.outboxRepo, kafka.NewOutboxPublisher(a.producer, a.cfg.KafkaTopic),
		outbox.WithLogger(a.logger.WithField("layer", "outbox")),
		outbox.WithMetrics(metrics.NewOutboxMetrics()),
		outbox.WithDLQPublisher(kafka.NewDLQPublisher(a.producer)),
		outbox.WithPollInterval(a.cfg.OutboxPollInterval),
		outbox.WithBatchSize(a.cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(a.cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(a.cfg.OutboxRetryDelay),
	)
}

// newOpsMux собирает служебные HTTP-маршруты.
func newOpsMux(healthHandler *healthcheck.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	return mux
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("ops server shutdown with error")
	}
}
