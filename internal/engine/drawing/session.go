package drawing

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/pkg/utils"
)

var (
	ErrPolygonNotFound  = errors.New("polygon not found")
	ErrVertexOutOfRange = errors.New("vertex index out of range")
	ErrTooFewVertices   = errors.New("polygon must keep at least 3 vertices")
)

// State - состояние машины рисования
type State string

const (
	StateIdle    State = "idle"
	StateDrawing State = "drawing"
)

// Session - состояние одного редактора: коллекция зон и рисуемый контур.
// Не потокобезопасна: одной сессией владеет один редактор.
type Session struct {
	id         string
	state      State
	inProgress []domain.LatLng
	polygons   []*domain.Polygon
	totalSqFt  float64
	updatedAt  time.Time

	now func() time.Time
}

// Option настраивает сессию
type Option func(*Session)

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession создаёт пустую сессию в состоянии idle
func NewSession(id string, opts ...Option) *Session {
	s := &Session{
		id:    id,
		state: StateIdle,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.updatedAt = s.now()
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) UpdatedAt() time.Time {
	return s.updatedAt
}

// InProgress возвращает копию вершин рисуемого контура
func (s *Session) InProgress() []domain.LatLng {
	return append([]domain.LatLng(nil), s.inProgress...)
}

// Polygons возвращает копии сохранённых полигонов
func (s *Session) Polygons() []*domain.Polygon {
	return lo.Map(s.polygons, func(p *domain.Polygon, _ int) *domain.Polygon {
		return p.Clone()
	})
}

// TotalAreaSqFt - сумма площадей, пересчитанных после последнего изменения
func (s *Session) TotalAreaSqFt() float64 {
	return s.totalSqFt
}

// StartDrawing переходит в drawing с пустым контуром
func (s *Session) StartDrawing() {
	s.state = StateDrawing
	s.inProgress = nil
	s.touch()
}

// OnMapClick добавляет точку в контур. В состоянии idle клик игнорируется.
func (s *Session) OnMapClick(p domain.LatLng) bool {
	if s.state != StateDrawing {
		return false
	}
	s.inProgress = append(s.inProgress, p)
	s.touch()
	return true
}

// FinishDrawing сохраняет контур как новую зону.
// Меньше 3 вершин - ничего не меняется, рисование продолжается.
func (s *Session) FinishDrawing() (*domain.Polygon, bool) {
	if s.state != StateDrawing || len(s.inProgress) < domain.MinPolygonVertices {
		return nil, false
	}

	p := &domain.Polygon{
		ID:        "zone-" + uuid.NewString(),
		Kind:      domain.PolygonKindZone,
		Vertices:  s.inProgress,
		CreatedAt: s.now(),
	}
	s.polygons = append(s.polygons, p)
	s.inProgress = nil
	s.state = StateIdle
	s.recompute()

	return p.Clone(), true
}

// AddNewZone завершает текущий контур (если он готов) и сразу начинает новый.
// Незавершённый контур меньше 3 вершин отбрасывается.
func (s *Session) AddNewZone() (*domain.Polygon, bool) {
	var committed *domain.Polygon
	var ok bool
	if s.state == StateDrawing {
		committed, ok = s.FinishDrawing()
	}
	s.StartDrawing()
	return committed, ok
}

// CancelDrawing отбрасывает рисуемый контур и возвращает в idle
func (s *Session) CancelDrawing() {
	s.inProgress = nil
	s.state = StateIdle
	s.touch()
}

// UpdateVertex перемещает вершину сохранённого полигона
func (s *Session) UpdateVertex(polygonID string, index int, p domain.LatLng) error {
	poly, err := s.find(polygonID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(poly.Vertices) {
		return fmt.Errorf("%w: %d", ErrVertexOutOfRange, index)
	}
	poly.Vertices[index] = p
	s.recompute()
	return nil
}

// InsertVertex вставляет вершину перед index (index == len - в конец)
func (s *Session) InsertVertex(polygonID string, index int, p domain.LatLng) error {
	poly, err := s.find(polygonID)
	if err != nil {
		return err
	}
	if index < 0 || index > len(poly.Vertices) {
		return fmt.Errorf("%w: %d", ErrVertexOutOfRange, index)
	}
	poly.Vertices = append(poly.Vertices, domain.LatLng{})
	copy(poly.Vertices[index+1:], poly.Vertices[index:])
	poly.Vertices[index] = p
	s.recompute()
	return nil
}

// RemoveVertex удаляет вершину, не опуская полигон ниже 3 вершин
func (s *Session) RemoveVertex(polygonID string, index int) error {
	poly, err := s.find(polygonID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(poly.Vertices) {
		return fmt.Errorf("%w: %d", ErrVertexOutOfRange, index)
	}
	if len(poly.Vertices) <= domain.MinPolygonVertices {
		return ErrTooFewVertices
	}
	poly.Vertices = append(poly.Vertices[:index], poly.Vertices[index+1:]...)
	s.recompute()
	return nil
}

// DeletePolygon удаляет зону по id
func (s *Session) DeletePolygon(id string) bool {
	before := len(s.polygons)
	s.polygons = lo.Filter(s.polygons, func(p *domain.Polygon, _ int) bool {
		return p.ID != id
	})
	if len(s.polygons) == before {
		return false
	}
	s.recompute()
	return true
}

// ClearAll удаляет все зоны
func (s *Session) ClearAll() {
	s.polygons = nil
	s.recompute()
}

// ReplacePolygons заменяет коллекцию (например, результатом автооценки)
func (s *Session) ReplacePolygons(polygons []*domain.Polygon) {
	s.polygons = lo.Map(polygons, func(p *domain.Polygon, _ int) *domain.Polygon {
		return p.Clone()
	})
	s.recompute()
}

func (s *Session) find(id string) (*domain.Polygon, error) {
	poly, ok := lo.Find(s.polygons, func(p *domain.Polygon) bool {
		return p.ID == id
	})
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPolygonNotFound, id)
	}
	return poly, nil
}

// recompute всегда проходит всю коллекцию, без инкрементальной суммы
func (s *Session) recompute() {
	s.totalSqFt = utils.RecomputeTotalArea(s.polygons)
	s.touch()
}

func (s *Session) touch() {
	s.updatedAt = s.now()
}

type sessionJSON struct {
	ID            string            `json:"id"`
	State         State             `json:"state"`
	InProgress    []domain.LatLng   `json:"in_progress"`
	Polygons      []*domain.Polygon `json:"polygons"`
	TotalAreaSqFt float64           `json:"total_area_sqft"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionJSON{
		ID:            s.id,
		State:         s.state,
		InProgress:    lo.Ternary(s.inProgress == nil, []domain.LatLng{}, s.inProgress),
		Polygons:      lo.Ternary(s.polygons == nil, []*domain.Polygon{}, s.polygons),
		TotalAreaSqFt: s.totalSqFt,
		UpdatedAt:     s.updatedAt,
	})
}

// UnmarshalJSON восстанавливает сессию; площади пересчитываются из вершин
func (s *Session) UnmarshalJSON(data []byte) error {
	var raw sessionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.id = raw.ID
	s.state = raw.State
	if s.state != StateDrawing {
		s.state = StateIdle
	}
	s.inProgress = raw.InProgress
	s.polygons = lo.Filter(raw.Polygons, func(p *domain.Polygon, _ int) bool {
		return p != nil
	})
	s.totalSqFt = utils.RecomputeTotalArea(s.polygons)
	s.updatedAt = raw.UpdatedAt
	if s.now == nil {
		s.now = time.Now
	}
	return nil
}
