package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lawn-quote-service/internal/domain"
)

// QuoteRepository - хранилище квот
type QuoteRepository interface {
	Create(ctx context.Context, quote *domain.Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error)
	List(ctx context.Context, filter domain.QuoteFilter) ([]*domain.Quote, int, error)

	// UpdateStatus меняет статус только если текущий равен from
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.QuoteStatus) (*domain.Quote, error)
	MarkEmailSent(ctx context.Context, id uuid.UUID, sentAt time.Time) (*domain.Quote, error)

	// CountCreatedBetween - число квот аккаунта в полуинтервале [from, to)
	CountCreatedBetween(ctx context.Context, accountID uuid.UUID, from, to time.Time) (int, error)
	PipelineStages(ctx context.Context, accountID uuid.UUID) ([]domain.PipelineStage, error)
}
