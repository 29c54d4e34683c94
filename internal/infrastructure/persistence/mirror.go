package persistence

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Binding connects a mirror to one state container
type Binding[S any] struct {
	// Name is the store key, e.g. "windows-store"
	Name    string
	Version int
	// Snapshot returns the current state
	Snapshot func() S
	// Restore installs rehydrated state
	Restore func(S)
	// Subscribe calls notify after each change and returns a cancel func
	Subscribe func(notify func()) func()
}

// MirrorOptions tunes the background writer
type MirrorOptions struct {
	// Debounce delays each write so bursts of changes produce one write
	Debounce time.Duration
	Logger   *zap.Logger
	// OnWrite, if set, observes each background write
	OnWrite func(name string, err error)
}

// Syncer is the type-independent view of a Mirror
type Syncer interface {
	Name() string
	Rehydrate(ctx context.Context) (bool, error)
	Start(ctx context.Context)
	Flush(ctx context.Context) error
	Close() error
}

// Mirror keeps a persisted copy of one state container. Changes mark the
// mirror dirty; a single writer goroutine saves the latest snapshot.
type Mirror[S any] struct {
	store   Store
	binding Binding[S]
	opts    MirrorOptions
	logger  *zap.Logger

	dirty chan struct{}
	done  chan struct{}

	mu        sync.Mutex
	started   bool
	cancelSub func()
	stop      context.CancelFunc
	closeErr  error
	closeOnce sync.Once
}

// NewMirror creates a mirror for binding backed by store
func NewMirror[S any](store Store, binding Binding[S], opts MirrorOptions) *Mirror[S] {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror[S]{
		store:   store,
		binding: binding,
		opts:    opts,
		logger:  logger.With(zap.String("store", binding.Name)),
		dirty:   make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Name returns the store key
func (m *Mirror[S]) Name() string {
	return m.binding.Name
}

// Rehydrate loads the persisted state into the container. It reports false
// when nothing was stored.
func (m *Mirror[S]) Rehydrate(ctx context.Context) (bool, error) {
	data, err := m.store.Load(ctx, m.binding.Name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	state, version, err := Decode[S](data)
	if err != nil {
		return false, err
	}
	if version != m.binding.Version {
		m.logger.Warn("Discarding persisted state with unknown version",
			zap.Int("version", version),
			zap.Int("expected", m.binding.Version))
		return false, nil
	}

	m.binding.Restore(state)
	m.logger.Info("Rehydrated state")
	return true, nil
}

// Start subscribes to changes and runs the writer until ctx is done or
// Close is called
func (m *Mirror[S]) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true

	ctx, m.stop = context.WithCancel(ctx)
	m.cancelSub = m.binding.Subscribe(m.markDirty)
	go m.run(ctx)
}

// Flush writes the current snapshot immediately
func (m *Mirror[S]) Flush(ctx context.Context) error {
	data, err := Encode(m.binding.Snapshot(), m.binding.Version)
	if err != nil {
		return err
	}
	return m.store.Save(ctx, m.binding.Name, data)
}

// Close stops the writer after saving any pending change
func (m *Mirror[S]) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		started := m.started
		m.mu.Unlock()

		if !started {
			return
		}
		m.cancelSub()
		m.stop()
		<-m.done
	})
	return m.closeErr
}

func (m *Mirror[S]) markDirty() {
	select {
	case m.dirty <- struct{}{}:
	default:
	}
}

func (m *Mirror[S]) run(ctx context.Context) {
	defer close(m.done)

	for {
		select {
		case <-ctx.Done():
			m.closeErr = m.drain()
			return
		case <-m.dirty:
			if m.opts.Debounce > 0 {
				select {
				case <-time.After(m.opts.Debounce):
				case <-ctx.Done():
				}
			}
			m.write()
		}
	}
}

// drain saves a change that arrived after the last write
func (m *Mirror[S]) drain() error {
	select {
	case <-m.dirty:
		return m.write()
	default:
		return nil
	}
}

func (m *Mirror[S]) write() error {
	// Writes outlive the run context
	err := m.Flush(context.Background())
	if m.opts.OnWrite != nil {
		m.opts.OnWrite(m.binding.Name, err)
	}
	if err != nil {
		m.logger.Error("Failed to persist state", zap.Error(err))
		return err
	}
	m.logger.Debug("Persisted state")
	return nil
}
