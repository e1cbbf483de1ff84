package estimation_test

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/config"
	"github.com/lawn-quote-service/internal/domain"
	apperrors "github.com/lawn-quote-service/internal/pkg/errors"
	"github.com/lawn-quote-service/internal/pkg/metrics"
	"github.com/lawn-quote-service/internal/usecase/dto"
	"github.com/lawn-quote-service/internal/worker/estimation"
)

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) ClaimPending(ctx context.Context, stream, group, consumer string, minIdle time.Duration, count int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, minIdle, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessages(ctx context.Context, stream, group string, messageIDs []string) error {
	args := m.Called(ctx, stream, group, messageIDs)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

// MockEstimator is a mock of EstimationUseCase
type MockEstimator struct {
	mock.Mock
}

func (m *MockEstimator) Estimate(ctx context.Context, req dto.EstimateRequest) (*dto.EstimateResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.EstimateResponse), args.Error(1)
}

var testWorkerConfig = config.WorkerConfig{
	ConsumerGroup: "test-group",
	BatchSize:     10,
	Concurrency:   3,
	MaxRetries:    1,
	ClaimIdle:     time.Minute,
}

func newWorker(t *testing.T, stream *MockStreamRepository, estimator *MockEstimator) (*estimation.EstimationWorker, *metrics.Collector) {
	t.Helper()
	collector, err := metrics.NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)
	return estimation.NewEstimationWorker(stream, estimator, testWorkerConfig, collector, zap.NewNop()), collector
}

func expectNoPending(stream *MockStreamRepository, w *estimation.EstimationWorker) {
	stream.On("ClaimPending", mock.Anything, domain.StreamQuoteEstimate, "test-group", w.ConsumerName(), time.Minute, 10).
		Return(nil, nil)
}

func requestMessage(t *testing.T, id string, event domain.EstimateRequestedEvent) domain.StreamMessage {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return domain.StreamMessage{ID: id, Data: string(data)}
}

func placeAt(lat, lng float64) domain.Place {
	return domain.Place{Location: &domain.LatLng{Lat: lat, Lng: lng}}
}

func TestEstimationWorker_Name(t *testing.T) {
	w, _ := newWorker(t, &MockStreamRepository{}, &MockEstimator{})

	assert.Equal(t, "quote-estimation", w.Name())
	assert.Equal(t, "test-group", w.ConsumerGroup())
	assert.NotEmpty(t, w.ConsumerName())
}

func TestEstimationWorker_ProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("empty queue", func(t *testing.T) {
		stream := &MockStreamRepository{}
		w, _ := newWorker(t, stream, &MockEstimator{})
		expectNoPending(stream, w)
		stream.On("ConsumeBatch", ctx, domain.StreamQuoteEstimate, "test-group", w.ConsumerName(), 10).Return(nil, nil)

		processed, err := w.ProcessBatch(ctx)

		require.NoError(t, err)
		assert.Zero(t, processed)
		stream.AssertNotCalled(t, "AckMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("consume failure", func(t *testing.T) {
		stream := &MockStreamRepository{}
		w, _ := newWorker(t, stream, &MockEstimator{})
		expectNoPending(stream, w)
		stream.On("ConsumeBatch", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("NOGROUP"))

		_, err := w.ProcessBatch(ctx)

		assert.Error(t, err)
	})

	t.Run("mixed batch", func(t *testing.T) {
		stream := &MockStreamRepository{}
		estimator := &MockEstimator{}
		w, collector := newWorker(t, stream, estimator)
		expectNoPending(stream, w)

		okID, failID := uuid.New(), uuid.New()
		messages := []domain.StreamMessage{
			requestMessage(t, "1-0", domain.EstimateRequestedEvent{
				RequestID: okID, Place: placeAt(40, -75), PropertyType: domain.PropertyTypeResidential,
			}),
			requestMessage(t, "2-0", domain.EstimateRequestedEvent{
				RequestID: failID, Place: domain.Place{}, PropertyType: domain.PropertyTypeCommercial,
			}),
			{ID: "3-0", Data: "{not json"},
		}
		stream.On("ConsumeBatch", ctx, domain.StreamQuoteEstimate, "test-group", w.ConsumerName(), 10).Return(messages, nil)

		estimator.On("Estimate", mock.Anything, mock.MatchedBy(func(r dto.EstimateRequest) bool {
			return r.PropertyType == domain.PropertyTypeResidential
		})).Return(&dto.EstimateResponse{
			Estimate:      domain.Estimate{EstimatedAreaSqFt: 5000, Confidence: domain.ConfidenceLow},
			TotalAreaSqFt: 5000,
			PlusCode:      "87F6XXXX+XX",
		}, nil)
		estimator.On("Estimate", mock.Anything, mock.MatchedBy(func(r dto.EstimateRequest) bool {
			return r.PropertyType == domain.PropertyTypeCommercial
		})).Return(nil, apperrors.ErrInvalidCoordinates)

		stream.On("PublishToStream", mock.Anything, domain.StreamQuoteEstimated, mock.MatchedBy(func(e domain.EstimateCompletedEvent) bool {
			return e.RequestID == okID && e.Error == "" && e.TotalAreaSqFt == 5000
		})).Return(nil).Once()
		stream.On("PublishToStream", mock.Anything, domain.StreamQuoteEstimated, mock.MatchedBy(func(e domain.EstimateCompletedEvent) bool {
			return e.RequestID == failID && e.Error == apperrors.ErrInvalidCoordinates.Code && e.Estimate == nil
		})).Return(nil).Once()

		stream.On("AckMessages", ctx, domain.StreamQuoteEstimate, "test-group", mock.MatchedBy(func(ids []string) bool {
			sorted := slices.Clone(ids)
			slices.Sort(sorted)
			return slices.Equal([]string{"1-0", "2-0", "3-0"}, sorted)
		})).Return(nil)

		processed, err := w.ProcessBatch(ctx)

		require.NoError(t, err)
		assert.Equal(t, 3, processed)
		stream.AssertExpectations(t)
		estimator.AssertExpectations(t)
		assert.Equal(t, 2.0, testutil.ToFloat64(collector.StreamMessages.WithLabelValues(domain.StreamQuoteEstimate, metrics.OutcomeProcessed)))
		assert.Equal(t, 1.0, testutil.ToFloat64(collector.StreamMessages.WithLabelValues(domain.StreamQuoteEstimate, metrics.OutcomeMalformed)))
	})

	t.Run("unknown property type is malformed", func(t *testing.T) {
		stream := &MockStreamRepository{}
		w, _ := newWorker(t, stream, &MockEstimator{})
		expectNoPending(stream, w)

		stream.On("ConsumeBatch", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]domain.StreamMessage{
			requestMessage(t, "7-0", domain.EstimateRequestedEvent{RequestID: uuid.New(), PropertyType: "farm"}),
		}, nil)
		stream.On("AckMessages", ctx, domain.StreamQuoteEstimate, "test-group", []string{"7-0"}).Return(nil)

		_, err := w.ProcessBatch(ctx)

		require.NoError(t, err)
		stream.AssertExpectations(t)
	})

	t.Run("publish failure leaves message pending", func(t *testing.T) {
		stream := &MockStreamRepository{}
		estimator := &MockEstimator{}
		w, collector := newWorker(t, stream, estimator)
		expectNoPending(stream, w)

		stream.On("ConsumeBatch", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]domain.StreamMessage{
			requestMessage(t, "9-0", domain.EstimateRequestedEvent{
				RequestID: uuid.New(), Place: placeAt(40, -75), PropertyType: domain.PropertyTypeResidential,
			}),
		}, nil)
		estimator.On("Estimate", mock.Anything, mock.Anything).Return(&dto.EstimateResponse{}, nil)
		stream.On("PublishToStream", mock.Anything, domain.StreamQuoteEstimated, mock.Anything).Return(errors.New("READONLY"))

		processed, err := w.ProcessBatch(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, processed)
		stream.AssertNumberOfCalls(t, "PublishToStream", 2)
		stream.AssertNotCalled(t, "AckMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, 1.0, testutil.ToFloat64(collector.StreamMessages.WithLabelValues(domain.StreamQuoteEstimate, metrics.OutcomeFailed)))
	})
}

func TestEstimationWorker_ReclaimsPending(t *testing.T) {
	ctx := context.Background()
	stream := &MockStreamRepository{}
	estimator := &MockEstimator{}
	w, collector := newWorker(t, stream, estimator)

	requestID := uuid.New()
	msg := requestMessage(t, "9-0", domain.EstimateRequestedEvent{
		RequestID: requestID, Place: placeAt(40, -75), PropertyType: domain.PropertyTypeResidential,
	})
	estimator.On("Estimate", mock.Anything, mock.Anything).Return(&dto.EstimateResponse{TotalAreaSqFt: 4000}, nil)

	// Первая попытка: сообщение новое, публикация падает, ACK нет
	stream.On("ClaimPending", ctx, domain.StreamQuoteEstimate, "test-group", w.ConsumerName(), time.Minute, 10).
		Return(nil, nil).Once()
	stream.On("ConsumeBatch", ctx, domain.StreamQuoteEstimate, "test-group", w.ConsumerName(), 10).
		Return([]domain.StreamMessage{msg}, nil).Once()
	stream.On("PublishToStream", mock.Anything, domain.StreamQuoteEstimated, mock.Anything).
		Return(errors.New("READONLY")).Twice()

	processed, err := w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	stream.AssertNotCalled(t, "AckMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// Вторая: то же сообщение возвращается из pending, новые не читаются
	stream.On("ClaimPending", ctx, domain.StreamQuoteEstimate, "test-group", w.ConsumerName(), time.Minute, 10).
		Return([]domain.StreamMessage{msg}, nil).Once()
	stream.On("PublishToStream", mock.Anything, domain.StreamQuoteEstimated, mock.MatchedBy(func(e domain.EstimateCompletedEvent) bool {
		return e.RequestID == requestID && e.TotalAreaSqFt == 4000
	})).Return(nil).Once()
	stream.On("AckMessages", ctx, domain.StreamQuoteEstimate, "test-group", []string{"9-0"}).Return(nil).Once()

	processed, err = w.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	stream.AssertExpectations(t)
	stream.AssertNumberOfCalls(t, "ConsumeBatch", 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.StreamMessages.WithLabelValues(domain.StreamQuoteEstimate, metrics.OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.StreamMessages.WithLabelValues(domain.StreamQuoteEstimate, metrics.OutcomeProcessed)))
}

func TestEstimationWorker_ClaimFailure(t *testing.T) {
	ctx := context.Background()
	stream := &MockStreamRepository{}
	w, _ := newWorker(t, stream, &MockEstimator{})
	stream.On("ClaimPending", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("NOGROUP"))

	_, err := w.ProcessBatch(ctx)

	assert.Error(t, err)
	stream.AssertNotCalled(t, "ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEstimationWorker_StartStop(t *testing.T) {
	ctx := context.Background()

	t.Run("consumer group failure", func(t *testing.T) {
		stream := &MockStreamRepository{}
		w, _ := newWorker(t, stream, &MockEstimator{})
		expectNoPending(stream, w)
		stream.On("CreateConsumerGroup", ctx, domain.StreamQuoteEstimate, "test-group").Return(errors.New("NOPERM"))

		assert.Error(t, w.Start(ctx))
	})

	t.Run("stops on request", func(t *testing.T) {
		stream := &MockStreamRepository{}
		w, _ := newWorker(t, stream, &MockEstimator{})
		expectNoPending(stream, w)
		stream.On("CreateConsumerGroup", mock.Anything, domain.StreamQuoteEstimate, "test-group").Return(nil)
		stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

		done := make(chan error, 1)
		go func() { done <- w.Start(ctx) }()

		time.Sleep(50 * time.Millisecond)
		require.NoError(t, w.Stop())
		require.NoError(t, w.Stop())

		select {
		case err := <-done:
			assert.NoError(t, err)
			assert.True(t, w.IsStopped())
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not stop")
		}
	})
}
