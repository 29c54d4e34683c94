package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
)

var (
	ErrNotFound    = errors.New("persisted state not found")
	ErrInvalidName = errors.New("invalid store name")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Store persists named opaque blobs
type Store interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}

// Envelope wraps a persisted state with a schema version
type Envelope[S any] struct {
	State   S   `json:"state"`
	Version int `json:"version"`
}

// Encode serializes a state inside an envelope
func Encode[S any](state S, version int) ([]byte, error) {
	data, err := sonic.Marshal(Envelope[S]{State: state, Version: version})
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return data, nil
}

// Decode parses an envelope and returns its state and version
func Decode[S any](data []byte) (S, int, error) {
	var env Envelope[S]
	if err := sonic.Unmarshal(data, &env); err != nil {
		var zero S
		return zero, 0, fmt.Errorf("decode envelope: %w", err)
	}
	return env.State, env.Version, nil
}

func checkName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// FileStore keeps one file per name in a directory. Writes go to a
// temporary file that is renamed over the target.
type FileStore struct {
	dir     string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewFileStore creates the directory if needed. With compress set, files are
// zstd-compressed and carry a .json.zst suffix.
func NewFileStore(dir string, compress bool) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	fs := &FileStore{dir: dir}
	if compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			enc.Close()
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		fs.encoder, fs.decoder = enc, dec
	}
	return fs, nil
}

// Dir returns the storage directory
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file used for name
func (s *FileStore) Path(name string) string {
	if s.encoder != nil {
		return filepath.Join(s.dir, name+".json.zst")
	}
	return filepath.Join(s.dir, name+".json")
}

// Load reads the blob stored under name
func (s *FileStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	if s.decoder != nil {
		data, err = s.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", name, err)
		}
	}
	return data, nil
}

// Save atomically replaces the blob stored under name
func (s *FileStore) Save(ctx context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.encoder != nil {
		data = s.encoder.EncodeAll(data, nil)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// Delete removes the blob stored under name. Missing blobs are not an error.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Close releases the compression resources
func (s *FileStore) Close() error {
	if s.encoder != nil {
		if err := s.encoder.Close(); err != nil {
			return err
		}
		s.decoder.Close()
	}
	return nil
}

// MemoryStore keeps blobs in memory
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Load returns a copy of the blob stored under name
func (s *MemoryStore) Load(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data under name
func (s *MemoryStore) Save(_ context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = append([]byte(nil), data...)
	return nil
}

// Delete removes the blob stored under name
func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}
