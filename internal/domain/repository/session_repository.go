package repository

import (
	"context"
	"time"

	"github.com/lawn-quote-service/internal/engine/drawing"
)

// SessionRepository хранит сессии рисования между запросами
type SessionRepository interface {
	// Get возвращает сессию или nil, nil если её нет
	Get(ctx context.Context, id string) (*drawing.Session, error)

	// Save перезаписывает сессию целиком (последняя запись выигрывает)
	Save(ctx context.Context, session *drawing.Session, ttl time.Duration) error

	// Delete удаляет сессию
	Delete(ctx context.Context, id string) error
}
