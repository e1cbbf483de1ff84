package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/domain/repository"
	"github.com/lawn-quote-service/internal/engine/drawing"
)

type sessionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewSessionRepository(redis *Redis) repository.SessionRepository {
	return &sessionRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func sessionKey(id string) string {
	return "drawing:session:" + id
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*drawing.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to load session", zap.String("session_id", id), zap.Error(err))
		return nil, fmt.Errorf("session get error: %w", err)
	}

	session := drawing.NewSession(id)
	if err := json.Unmarshal(data, session); err != nil {
		r.logger.Error("Failed to unmarshal session", zap.String("session_id", id), zap.Error(err))
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *drawing.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(session.ID()), data, ttl).Err(); err != nil {
		r.logger.Error("Failed to save session", zap.String("session_id", session.ID()), zap.Error(err))
		return fmt.Errorf("session set error: %w", err)
	}

	r.logger.Debug("Session saved",
		zap.String("session_id", session.ID()),
		zap.Int("polygons", len(session.Polygons())),
		zap.Float64("total_area_sqft", session.TotalAreaSqFt()))
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete session", zap.String("session_id", id), zap.Error(err))
		return fmt.Errorf("session delete error: %w", err)
	}
	return nil
}
