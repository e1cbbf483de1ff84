package usecase

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/domain/repository"
	"github.com/lawn-quote-service/internal/engine/drawing"
	"github.com/lawn-quote-service/internal/pkg/errors"
	"github.com/lawn-quote-service/internal/pkg/utils"
	"github.com/lawn-quote-service/internal/usecase/dto"
)

// SessionUseCase - сессии ручного рисования зон.
// Каждая операция загружает сессию, меняет её и сохраняет целиком.
type SessionUseCase struct {
	sessionRepo repository.SessionRepository
	logger      *zap.Logger
	ttl         time.Duration
}

// NewSessionUseCase - создание нового SessionUseCase
func NewSessionUseCase(
	sessionRepo repository.SessionRepository,
	logger *zap.Logger,
	ttl time.Duration,
) *SessionUseCase {
	return &SessionUseCase{
		sessionRepo: sessionRepo,
		logger:      logger,
		ttl:         ttl,
	}
}

// Create - новая пустая сессия
func (uc *SessionUseCase) Create(ctx context.Context) (*dto.SessionResponse, error) {
	session := drawing.NewSession(uuid.NewString())
	if err := uc.save(ctx, session); err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(session), nil
}

// Get - текущее состояние сессии
func (uc *SessionUseCase) Get(ctx context.Context, id string) (*dto.SessionResponse, error) {
	session, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(session), nil
}

// Delete - удаление сессии
func (uc *SessionUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.sessionRepo.Delete(ctx, id); err != nil {
		uc.logger.Error("Failed to delete session", zap.String("session_id", id), zap.Error(err))
		return errors.ErrCacheError
	}
	return nil
}

// StartDrawing - начать новый контур
func (uc *SessionUseCase) StartDrawing(ctx context.Context, id string) (*dto.SessionResponse, error) {
	return uc.apply(ctx, id, func(s *drawing.Session) (*dto.SessionResponse, error) {
		s.StartDrawing()
		return dto.NewSessionResponse(s), nil
	})
}

// MapClick - добавить точку; вне режима рисования клик игнорируется
func (uc *SessionUseCase) MapClick(ctx context.Context, id string, point domain.LatLng) (*dto.SessionResponse, error) {
	if !utils.ValidateCoordinates(point.Lat, point.Lng) {
		return nil, errors.ErrInvalidCoordinates
	}
	return uc.apply(ctx, id, func(s *drawing.Session) (*dto.SessionResponse, error) {
		accepted := s.OnMapClick(point)
		resp := dto.NewSessionResponse(s)
		resp.Accepted = &accepted
		return resp, nil
	})
}

// FinishDrawing - замкнуть контур (нужно минимум 3 точки)
func (uc *SessionUseCase) FinishDrawing(ctx context.Context, id string) (*dto.SessionResponse, error) {
	return uc.apply(ctx, id, func(s *drawing.Session) (*dto.SessionResponse, error) {
		committed, _ := s.FinishDrawing()
		resp := dto.NewSessionResponse(s)
		resp.Committed = committed
		return resp, nil
	})
}

// AddNewZone - сохранить текущий контур, если он готов, и начать следующий
func (uc *SessionUseCase) AddNewZone(ctx context.Context, id string) (*dto.SessionResponse, error) {
	return uc.apply(ctx, id, func(s *drawing.Session) (*dto.SessionResponse, error) {
		committed, _ := s.AddNewZone()
		resp := dto.NewSessionResponse(s)
		resp.Committed = committed
		return resp, nil
	})
}

// CancelDrawing - отменить текущий контур
func (uc *SessionUseCase) CancelDrawing(ctx context.Context, id string) (*dto.SessionResponse, error) {
	return uc.apply(ctx, id, func(s *drawing.Session) (*dto.SessionResponse, error) {
		s.CancelDrawing()
		return dto.NewSessionResponse(s), nil
	})
}

// ClearAll - удалить все зоны
func (uc *SessionUseCase) ClearAll(ctx context.Context, id string) (*dto.SessionResponse, error) {
	return uc.apply(ctx, id, func(s *drawing.Session) (*dto.SessionResponse, error) {
		s.ClearAll()
		return dto.NewSessionResponse(s), nil
	})
}

// UpdateVertex - перетаскивание вершины
func (uc *SessionUseCase) UpdateVertex(ctx context.Context, id, polygonID string, index int, point domain.LatLng) (*dto.SessionResponse, error) {
	if !utils.ValidateCoordinates(point.Lat, point.Lng) {
		return nil, errors.ErrInvalidCoordinates
	}
	return uc.apply(ctx, id, func(s *drawing.Session) (*dto.SessionResponse, error) {
		if err := s.UpdateVertex(polygonID, index, point); err != nil {
			return nil, err
		}
		return dto.NewSessionResponse(s), nil
	})
}

// InsertVertex - вставка вершины перед index (index == len - в конец)
func (uc *SessionUseCase) InsertVertex(ctx context.Context, id, polygonID string, index int, point domain.LatLng) (*dto.SessionResponse, error) {
	if !utils.ValidateCoordinates(point.Lat, point.Lng) {
		return nil, errors.ErrInvalidCoordinates
	}
	return uc.apply(ctx, id, func(s *drawing.Session) (*dto.SessionResponse, error) {
		if err := s.InsertVertex(polygonID, index, point); err != nil {
			return nil, err
		}
		return dto.NewSessionResponse(s), nil
	})
}

// RemoveVertex - удаление вершины, полигон не может стать меньше треугольника
func (uc *SessionUseCase) RemoveVertex(ctx context.Context, id, polygonID string, index int) (*dto.SessionResponse, error) {
	return uc.apply(ctx, id, func(s *drawing.Session) (*dto.SessionResponse, error) {
		if err := s.RemoveVertex(polygonID, index); err != nil {
			return nil, err
		}
		return dto.NewSessionResponse(s), nil
	})
}

// DeletePolygon - удаление зоны
func (uc *SessionUseCase) DeletePolygon(ctx context.Context, id, polygonID string) (*dto.SessionResponse, error) {
	return uc.apply(ctx, id, func(s *drawing.Session) (*dto.SessionResponse, error) {
		if !s.DeletePolygon(polygonID) {
			return nil, drawing.ErrPolygonNotFound
		}
		return dto.NewSessionResponse(s), nil
	})
}

// ReplacePolygons подставляет сгенерированные полигоны в сессию; сессия создаётся, если её нет
func (uc *SessionUseCase) ReplacePolygons(ctx context.Context, id string, polygons []*domain.Polygon) (*dto.SessionResponse, error) {
	session, err := uc.sessionRepo.Get(ctx, id)
	if err != nil {
		uc.logger.Error("Failed to load session", zap.String("session_id", id), zap.Error(err))
		return nil, errors.ErrCacheError
	}
	if session == nil {
		session = drawing.NewSession(id)
	}

	session.ReplacePolygons(polygons)
	if err := uc.save(ctx, session); err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(session), nil
}

// Polygons - зоны сессии с площадью, пересчитанной из вершин
func (uc *SessionUseCase) Polygons(ctx context.Context, id string) ([]*domain.Polygon, float64, error) {
	session, err := uc.load(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return session.Polygons(), session.TotalAreaSqFt(), nil
}

func (uc *SessionUseCase) apply(
	ctx context.Context,
	id string,
	fn func(*drawing.Session) (*dto.SessionResponse, error),
) (*dto.SessionResponse, error) {
	session, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}

	resp, err := fn(session)
	if err != nil {
		return nil, mapDrawingError(err)
	}

	if err := uc.save(ctx, session); err != nil {
		return nil, err
	}
	return resp, nil
}

func (uc *SessionUseCase) load(ctx context.Context, id string) (*drawing.Session, error) {
	session, err := uc.sessionRepo.Get(ctx, id)
	if err != nil {
		uc.logger.Error("Failed to load session", zap.String("session_id", id), zap.Error(err))
		return nil, errors.ErrCacheError
	}
	if session == nil {
		return nil, errors.ErrSessionNotFound
	}
	return session, nil
}

func (uc *SessionUseCase) save(ctx context.Context, session *drawing.Session) error {
	if err := uc.sessionRepo.Save(ctx, session, uc.ttl); err != nil {
		uc.logger.Error("Failed to save session", zap.String("session_id", session.ID()), zap.Error(err))
		return errors.ErrCacheError
	}
	return nil
}

func mapDrawingError(err error) error {
	switch {
	case stderrors.Is(err, drawing.ErrPolygonNotFound):
		return errors.ErrPolygonNotFound
	case stderrors.Is(err, drawing.ErrVertexOutOfRange):
		return errors.ErrVertexOutOfRange
	case stderrors.Is(err, drawing.ErrTooFewVertices):
		return errors.ErrTooFewVertices
	}
	return err
}
