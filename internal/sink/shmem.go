package sink

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"golang.org/x/sys/unix"

	"main/internal/model"
)

const defaultShmemDir = "/dev/shm"

var ErrRecordTooLarge = errors.New("record larger than the ring capacity")

// ShmemConfig controls the shared-memory ring backend.
type ShmemConfig struct {
	// Dir is where the backing file lives. Defaults to /dev/shm so the
	// mapping stays memory resident.
	Dir  string
	Name string
	Size int
}

func (c ShmemConfig) withDefaults() ShmemConfig {
	if c.Dir == "" {
		c.Dir = defaultShmemDir
	}
	return c
}

// Validate checks if the configuration is usable.
func (c ShmemConfig) Validate() error {
	if c.Name == "" {
		return errors.New("invalid shmem sink config: Name is empty")
	}
	if c.Size <= 0 {
		return errors.New("invalid shmem sink config: Size must be > 0")
	}
	return nil
}

// ShmemBackend writes newline-delimited JSON records into a memory-mapped
// ring. When a record would run past the end of the arena the cursor resets
// to 0 and the oldest data is overwritten; readers get at-most-latest
// retention, never a durability guarantee.
type ShmemBackend struct {
	cfg    ShmemConfig
	file   *os.File
	arena  []byte
	cursor int
}

// NewShmemBackend creates the backing file fresh and maps it read-write.
// Failing to create or map the segment is fatal to construction.
func NewShmemBackend(cfg ShmemConfig) (*ShmemBackend, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	path := filepath.Join(cfg.Dir, cfg.Name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "create shared memory segment")
	}
	// Discard any previous run's contents before sizing, so readers never
	// mistake stale records past the cursor for live data.
	if err := file.Truncate(0); err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "reset shared memory segment")
	}
	if err := file.Truncate(int64(cfg.Size)); err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "size shared memory segment")
	}

	arena, err := unix.Mmap(int(file.Fd()), 0, cfg.Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "map shared memory segment")
	}

	logs.Infof("shared memory segment %s mapped, %d bytes", path, cfg.Size)
	return &ShmemBackend{cfg: cfg, file: file, arena: arena}, nil
}

// Write serializes one bar into the ring as a contiguous region.
func (b *ShmemBackend) Write(k model.Kline) error {
	buf, err := json.Marshal(k)
	if err != nil {
		return errors.Wrap(err, "marshal kline record")
	}
	buf = append(buf, '\n')
	if len(buf) > len(b.arena) {
		return errors.Wrapf(ErrRecordTooLarge, "%d bytes into %d", len(buf), len(b.arena))
	}

	if b.cursor+len(buf) > len(b.arena) {
		b.cursor = 0
	}
	copy(b.arena[b.cursor:], buf)
	b.cursor += len(buf)
	return nil
}

// Flush is a no-op; the mapping is shared, so writes are visible to readers
// as soon as the copy completes.
func (b *ShmemBackend) Flush() error {
	return nil
}

// Close unmaps the arena and closes the backing file. The file itself is
// left in place for late readers.
func (b *ShmemBackend) Close() error {
	if b.arena == nil {
		return nil
	}
	err := unix.Munmap(b.arena)
	b.arena = nil
	if cerr := b.file.Close(); err == nil {
		err = cerr
	}
	b.file = nil
	return err
}

// Cursor reports the next write offset, for monitoring.
func (b *ShmemBackend) Cursor() int {
	return b.cursor
}
