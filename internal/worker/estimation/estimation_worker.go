package estimation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lawn-quote-service/internal/config"
	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/domain/repository"
	"github.com/lawn-quote-service/internal/pkg/errors"
	"github.com/lawn-quote-service/internal/pkg/metrics"
	"github.com/lawn-quote-service/internal/usecase/dto"
	"github.com/lawn-quote-service/internal/worker"
)

const (
	emptyQueueSleep = 100 * time.Millisecond // пауза если очередь пуста
	errorSleep      = time.Second
	publishBackoff  = 50 * time.Millisecond

	defaultClaimIdle = 30 * time.Second
)

// Estimator - то, что воркеру нужно от EstimationUseCase
type Estimator interface {
	Estimate(ctx context.Context, req dto.EstimateRequest) (*dto.EstimateResponse, error)
}

// EstimationWorker обрабатывает запросы оценки от встраиваемого виджета
// из stream:quote:estimate и публикует результаты в stream:quote:estimated
type EstimationWorker struct {
	*worker.BaseWorker
	streamRepo  repository.StreamRepository
	estimator   Estimator
	metrics     *metrics.Collector
	batchSize   int
	concurrency int
	maxRetries  int
	claimIdle   time.Duration
}

// NewEstimationWorker создает новый EstimationWorker
func NewEstimationWorker(
	streamRepo repository.StreamRepository,
	estimator Estimator,
	cfg config.WorkerConfig,
	collector *metrics.Collector,
	logger *zap.Logger,
) *EstimationWorker {
	claimIdle := cfg.ClaimIdle
	if claimIdle <= 0 {
		claimIdle = defaultClaimIdle
	}

	return &EstimationWorker{
		BaseWorker:  worker.NewBaseWorker("quote-estimation", cfg.ConsumerGroup, logger),
		streamRepo:  streamRepo,
		estimator:   estimator,
		metrics:     collector,
		batchSize:   max(1, cfg.BatchSize),
		concurrency: max(1, cfg.Concurrency),
		maxRetries:  max(0, cfg.MaxRetries),
		claimIdle:   claimIdle,
	}
}

// Start запускает цикл чтения пачек до остановки
func (w *EstimationWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting estimation worker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.Int("batch_size", w.batchSize),
		zap.Int("concurrency", w.concurrency),
	)

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamQuoteEstimate, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		processed, err := w.ProcessBatch(ctx)
		if err != nil {
			logger.Error("Failed to process batch", zap.Error(err))
			w.Pause(ctx, errorSleep)
			continue
		}

		if processed == 0 {
			w.Pause(ctx, emptyQueueSleep)
		}
	}
}

// ProcessBatch читает одну пачку сообщений и обрабатывает её параллельно.
// Сначала забираются зависшие в pending дольше claimIdle, новые читаются,
// только если таких нет. Возвращает число прочитанных сообщений (включая битые).
func (w *EstimationWorker) ProcessBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.nextBatch(ctx)
	if err != nil {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, nil
	}

	var (
		mu    sync.Mutex
		acked = make([]string, 0, len(messages))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for _, msg := range messages {
		g.Go(func() error {
			event, err := parseMessage(msg)
			if err != nil {
				logger.Warn("Failed to parse message, skipping",
					zap.String("message_id", msg.ID),
					zap.Error(err),
				)
				w.metrics.ObserveStreamMessage(domain.StreamQuoteEstimate, metrics.OutcomeMalformed)
				// битое сообщение подтверждаем, чтобы не застревало
				mu.Lock()
				acked = append(acked, msg.ID)
				mu.Unlock()
				return nil
			}

			if err := w.handle(gctx, event); err != nil {
				logger.Error("Failed to publish estimate",
					zap.String("message_id", msg.ID),
					zap.String("request_id", event.RequestID.String()),
					zap.Error(err),
				)
				w.metrics.ObserveStreamMessage(domain.StreamQuoteEstimate, metrics.OutcomeFailed)
				// без ACK сообщение останется в pending, через claimIdle его заберёт nextBatch
				return nil
			}

			w.metrics.ObserveStreamMessage(domain.StreamQuoteEstimate, metrics.OutcomeProcessed)
			mu.Lock()
			acked = append(acked, msg.ID)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(acked) > 0 {
		if err := w.streamRepo.AckMessages(ctx, domain.StreamQuoteEstimate, w.ConsumerGroup(), acked); err != nil {
			logger.Error("Failed to ack messages", zap.Error(err))
		}
	}

	logger.Debug("Batch processed",
		zap.Int("received", len(messages)),
		zap.Int("acked", len(acked)),
	)

	return len(messages), nil
}

func (w *EstimationWorker) nextBatch(ctx context.Context) ([]domain.StreamMessage, error) {
	claimed, err := w.streamRepo.ClaimPending(
		ctx,
		domain.StreamQuoteEstimate,
		w.ConsumerGroup(),
		w.ConsumerName(),
		w.claimIdle,
		w.batchSize,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending: %w", err)
	}
	if len(claimed) > 0 {
		return claimed, nil
	}

	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamQuoteEstimate,
		w.ConsumerGroup(),
		w.ConsumerName(),
		w.batchSize,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume batch: %w", err)
	}
	return messages, nil
}

// handle - ошибка оценки уходит клиенту в событии, ошибкой считается только сбой публикации
func (w *EstimationWorker) handle(ctx context.Context, event *domain.EstimateRequestedEvent) error {
	result := domain.EstimateCompletedEvent{
		RequestID: event.RequestID,
		AccountID: event.AccountID,
	}

	resp, err := w.estimator.Estimate(ctx, dto.EstimateRequest{
		Place:        event.Place,
		PropertyType: event.PropertyType,
		AccountID:    event.AccountID,
	})
	if err != nil {
		result.Error = errorMessage(err)
	} else {
		result.Estimate = &resp.Estimate
		result.Polygons = resp.Polygons
		result.TotalAreaSqFt = resp.TotalAreaSqFt
		result.PlusCode = resp.PlusCode
		result.Pricing = resp.Pricing
	}

	return w.publish(ctx, result)
}

func (w *EstimationWorker) publish(ctx context.Context, result domain.EstimateCompletedEvent) error {
	var err error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 && !w.Pause(ctx, publishBackoff*time.Duration(attempt)) {
			break
		}
		if err = w.streamRepo.PublishToStream(ctx, domain.StreamQuoteEstimated, result); err == nil {
			return nil
		}
	}
	return err
}

func parseMessage(msg domain.StreamMessage) (*domain.EstimateRequestedEvent, error) {
	if msg.Data == "" {
		return nil, fmt.Errorf("missing 'data' field")
	}

	var event domain.EstimateRequestedEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if !event.PropertyType.IsValid() {
		return nil, fmt.Errorf("unknown property type %q", event.PropertyType)
	}

	return &event, nil
}

func errorMessage(err error) string {
	if appErr, ok := errors.As(err); ok {
		return appErr.Code
	}
	return errors.ErrInternalServer.Code
}
