package resource

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

var ErrReleased = errors.New("resource released")

type Kind int

const (
	KindAudio Kind = iota
	KindCover
	KindLyrics
)

func (k Kind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindCover:
		return "cover"
	case KindLyrics:
		return "lyrics"
	default:
		return "unknown"
	}
}

// the zero Handle refers to nothing
type Handle struct {
	ID     uuid.UUID
	Kind   Kind
	Source string
}

func (h Handle) IsZero() bool {
	return h.ID == uuid.Nil
}

func (h Handle) URI() string {
	if h.IsZero() {
		return ""
	}
	return fmt.Sprintf("lrcplay:%s/%s", h.Kind, h.ID)
}

type entry struct {
	handle Handle
	value  any
	closer io.Closer
}

type Registry struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[uuid.UUID]*entry)}
}

// closer may be nil
func (r *Registry) Register(kind Kind, source string, value any, closer io.Closer) Handle {
	h := Handle{ID: uuid.New(), Kind: kind, Source: source}

	r.mu.Lock()
	r.entries[h.ID] = &entry{handle: h, value: value, closer: closer}
	r.mu.Unlock()

	return h
}

func (r *Registry) Replace(old Handle, kind Kind, source string, value any, closer io.Closer) (Handle, error) {
	var err error
	if !old.IsZero() {
		if releaseErr := r.Release(old); releaseErr != nil && !errors.Is(releaseErr, ErrReleased) {
			err = releaseErr
		}
	}
	return r.Register(kind, source, value, closer), err
}

func (r *Registry) Lookup(h Handle) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[h.ID]
	if !ok {
		return nil, ErrReleased
	}
	return e.value, nil
}

func (r *Registry) Release(h Handle) error {
	r.mu.Lock()
	e, ok := r.entries[h.ID]
	if ok {
		delete(r.entries, h.ID)
	}
	r.mu.Unlock()

	if !ok {
		return ErrReleased
	}
	if e.closer != nil {
		if err := e.closer.Close(); err != nil {
			return fmt.Errorf("failed to release %s: %w", e.handle.Kind, err)
		}
	}
	return nil
}

func (r *Registry) ReleaseAll() error {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[uuid.UUID]*entry)
	r.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if e.closer == nil {
			continue
		}
		if err := e.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to release %s: %w", e.handle.Kind, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
