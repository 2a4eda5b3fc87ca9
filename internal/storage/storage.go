package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
)

// Package storage persists the cadence marker, the only state kept between runs.

// ErrMalformedMarker is returned when a stored marker cannot be decoded or
// holds an impossible date.
var ErrMalformedMarker = errors.New("malformed cadence marker")

// Store reads and writes the monthly cadence marker.
type Store interface {
	Close() error
	// LoadMarker returns the stored marker. ok is false when none exists.
	LoadMarker(ctx context.Context) (m domain.Marker, ok bool, err error)
	// SaveMarker overwrites the stored marker as a whole.
	SaveMarker(ctx context.Context, m domain.Marker) error
}

const (
	TypeFile  = "file"
	TypeBBolt = "bbolt"
	TypeNone  = "none"
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeFile:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("file storage requires a path")
		}
		return newFileStore(path), nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func encodeMarker(m domain.Marker) ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("refusing to store invalid marker %+v", m)
	}
	return json.Marshal(m)
}

func decodeMarker(raw []byte) (domain.Marker, error) {
	var m domain.Marker
	if err := json.Unmarshal(raw, &m); err != nil {
		return domain.Marker{}, fmt.Errorf("%w: %v", ErrMalformedMarker, err)
	}
	if !m.Valid() {
		return domain.Marker{}, fmt.Errorf("%w: %+v", ErrMalformedMarker, m)
	}
	return m, nil
}

type noopStore struct{}

func (noopStore) Close() error { return nil }
func (noopStore) LoadMarker(context.Context) (domain.Marker, bool, error) {
	return domain.Marker{}, false, nil
}
func (noopStore) SaveMarker(context.Context, domain.Marker) error { return nil }
