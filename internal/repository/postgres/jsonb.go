package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonb - колонка JSONB, которая читается и пишется как значение типа T
type jsonb[T any] struct {
	V     T
	Valid bool
}

func newJSONB[T any](v T) jsonb[T] {
	return jsonb[T]{V: v, Valid: true}
}

func (j jsonb[T]) Value() (driver.Value, error) {
	if !j.Valid {
		return nil, nil
	}
	data, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (j *jsonb[T]) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		var zero T
		j.V, j.Valid = zero, false
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}

	if err := json.Unmarshal(data, &j.V); err != nil {
		return fmt.Errorf("unmarshal jsonb: %w", err)
	}
	j.Valid = true
	return nil
}
