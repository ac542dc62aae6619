package credentials

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

const (
	// DefaultPath is the credential file used when none is configured.
	DefaultPath = ".env"

	// DefaultLockTimeout bounds how long Save waits for the advisory file lock.
	DefaultLockTimeout = 5 * time.Second

	fileMode = 0o600
)

// FileStore persists credentials as a dotenv key=value file.
//
// Unrelated keys already present in the file are preserved on Save. Comments
// are not: the file is rewritten in sorted key order.
type FileStore struct {
	fs          afero.Fs
	path        string
	lookupEnv   func(string) (string, bool)
	lock        bool
	lockTimeout time.Duration
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithFs sets the filesystem. Advisory locking stays enabled only for the OS filesystem.
func WithFs(fs afero.Fs) FileStoreOption {
	return func(s *FileStore) {
		s.fs = fs
		_, isOS := fs.(*afero.OsFs)
		s.lock = isOS
	}
}

// WithEnvLookup sets the function used to read environment overrides.
// Pass nil to disable overrides.
func WithEnvLookup(lookup func(string) (string, bool)) FileStoreOption {
	return func(s *FileStore) {
		s.lookupEnv = lookup
	}
}

// WithLockTimeout sets how long Save waits for the file lock.
func WithLockTimeout(d time.Duration) FileStoreOption {
	return func(s *FileStore) {
		s.lockTimeout = d
	}
}

// NewFileStore creates a store for the file at path.
// By default it uses the OS filesystem, lets process environment variables
// override file values and guards writes with a flock on path+".lock".
func NewFileStore(path string, opts ...FileStoreOption) *FileStore {
	if path == "" {
		path = DefaultPath
	}
	s := &FileStore{
		fs:          afero.NewOsFs(),
		path:        path,
		lookupEnv:   os.LookupEnv,
		lock:        true,
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the credential file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the credential file and applies environment overrides.
func (s *FileStore) Load() (Credentials, error) {
	values, exists, err := s.read()
	if err != nil {
		return Credentials{}, err
	}

	fromEnv := false
	if s.lookupEnv != nil {
		for _, key := range Keys {
			if v, ok := s.lookupEnv(key); ok && v != "" {
				values[key] = v
				fromEnv = true
			}
		}
	}

	if !exists && !fromEnv {
		return Credentials{}, newMissing(s.path)
	}
	return fromValues(values), nil
}

// Save writes the recognized keys, keeping any other keys in the file.
// Empty fields remove their key.
func (s *FileStore) Save(c Credentials) error {
	unlock, err := s.acquire()
	if err != nil {
		return err
	}
	defer unlock()

	values, _, err := s.read()
	if err != nil {
		return err
	}
	for key, v := range c.values() {
		if v == "" {
			delete(values, key)
			continue
		}
		values[key] = v
	}

	content, err := godotenv.Marshal(values)
	if err != nil {
		return newIOError("encode", s.path, err)
	}
	return s.writeAtomic([]byte(content + "\n"))
}

// read returns the raw key/value content of the file and whether it exists.
func (s *FileStore) read() (map[string]string, bool, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, false, nil
		}
		return nil, false, newIOError("read", s.path, err)
	}
	values, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, true, newIOError("parse", s.path, err)
	}
	return values, true, nil
}

func (s *FileStore) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o700); err != nil {
		return newIOError("write", s.path, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return newIOError("write", s.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return newIOError("write", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return newIOError("write", s.path, err)
	}
	if err := s.fs.Chmod(tmpName, fileMode); err != nil {
		_ = s.fs.Remove(tmpName)
		return newIOError("write", s.path, err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return newIOError("write", s.path, err)
	}
	return nil
}

// acquire takes the advisory lock when enabled. The returned func releases it.
func (s *FileStore) acquire() (func(), error) {
	if !s.lock {
		return func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.lockTimeout)
	defer cancel()

	fl := flock.New(s.path + ".lock")
	locked, err := fl.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return nil, newIOError("lock", s.path, err)
	}
	if !locked {
		return nil, newIOError("lock", s.path, errors.New("credential file is locked by another process"))
	}
	return func() { _ = fl.Unlock() }, nil
}
