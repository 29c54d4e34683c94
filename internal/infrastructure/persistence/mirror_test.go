package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter is a minimal observable container
type counter struct {
	mu        sync.Mutex
	value     sample
	listeners map[int]func()
	next      int
}

func newCounter() *counter {
	return &counter{listeners: make(map[int]func())}
}

func (c *counter) Get() sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *counter) Set(v sample) {
	c.mu.Lock()
	c.value = v
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (c *counter) Subscribe(fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.next
	c.next++
	c.listeners[key] = fn
	return func() {
		c.mu.Lock()
		delete(c.listeners, key)
		c.mu.Unlock()
	}
}

func bindingFor(c *counter) Binding[sample] {
	return Binding[sample]{
		Name:      "theme-store",
		Snapshot:  c.Get,
		Restore:   c.Set,
		Subscribe: c.Subscribe,
	}
}

func TestMirrorRehydrate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := newCounter()
	m := NewMirror(store, bindingFor(c), MirrorOptions{})

	ok, err := m.Rehydrate(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	data, err := Encode(sample{Theme: "light", Count: 7}, 0)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "theme-store", data))

	ok, err = m.Rehydrate(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, sample{Theme: "light", Count: 7}, c.Get())
}

func TestMirrorIgnoresOtherVersions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data, err := Encode(sample{Theme: "light"}, 3)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "theme-store", data))

	c := newCounter()
	ok, err := NewMirror(store, bindingFor(c), MirrorOptions{}).Rehydrate(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, sample{}, c.Get())
}

func TestMirrorRehydrateCorrupt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, "theme-store", []byte("nope")))

	_, err := NewMirror(store, bindingFor(newCounter()), MirrorOptions{}).Rehydrate(ctx)
	assert.Error(t, err)
}

func TestMirrorWritesChanges(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := newCounter()
	m := NewMirror(store, bindingFor(c), MirrorOptions{})
	m.Start(ctx)
	defer m.Close()

	c.Set(sample{Theme: "dark", Count: 1})

	assert.Eventually(t, func() bool {
		data, err := store.Load(ctx, "theme-store")
		if err != nil {
			return false
		}
		got, _, err := Decode[sample](data)
		return err == nil && got.Count == 1
	}, time.Second, 5*time.Millisecond)
}

func TestMirrorCloseFlushesPending(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := newCounter()
	m := NewMirror(store, bindingFor(c), MirrorOptions{Debounce: time.Hour})
	m.Start(ctx)

	for i := 1; i <= 20; i++ {
		c.Set(sample{Theme: "dark", Count: i})
	}
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	data, err := store.Load(ctx, "theme-store")
	require.NoError(t, err)
	got, _, err := Decode[sample](data)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Count)

	// Unsubscribed after close
	c.Set(sample{Count: 99})
	data, _ = store.Load(ctx, "theme-store")
	got, _, _ = Decode[sample](data)
	assert.Equal(t, 20, got.Count)
}

func TestMirrorCloseWithoutStart(t *testing.T) {
	m := NewMirror(NewMemoryStore(), bindingFor(newCounter()), MirrorOptions{})
	assert.NoError(t, m.Close())
}

func TestMirrorFlush(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := newCounter()
	c.Set(sample{Theme: "light", Count: 4})

	var s Syncer = NewMirror(store, bindingFor(c), MirrorOptions{})
	assert.Equal(t, "theme-store", s.Name())
	require.NoError(t, s.Flush(ctx))

	data, err := store.Load(ctx, "theme-store")
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":{"theme":"light","count":4},"version":0}`, string(data))
}

func TestMirrorReportsWrites(t *testing.T) {
	var (
		mu    sync.Mutex
		names []string
	)
	c := newCounter()
	m := NewMirror(NewMemoryStore(), bindingFor(c), MirrorOptions{
		OnWrite: func(name string, err error) {
			assert.NoError(t, err)
			mu.Lock()
			names = append(names, name)
			mu.Unlock()
		},
	})
	m.Start(context.Background())
	defer m.Close()

	c.Set(sample{Count: 2})
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(names) > 0 && names[0] == "theme-store"
	}, time.Second, 5*time.Millisecond)
}
