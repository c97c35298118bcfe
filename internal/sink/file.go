package sink

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/model"
)

const (
	defaultRotationInterval = 15 * time.Minute
	segmentTimeLayout       = "20060102-1504"
)

var segmentZone = time.FixedZone("UTC+8", 8*3600)

// FileConfig controls the rotating compressed-segment backend.
type FileConfig struct {
	Dir              string
	RotationInterval time.Duration
}

func (c FileConfig) withDefaults() FileConfig {
	if c.RotationInterval <= 0 {
		c.RotationInterval = defaultRotationInterval
	}
	return c
}

// Validate checks if the configuration is usable.
func (c FileConfig) Validate() error {
	if c.Dir == "" {
		return errors.New("invalid file sink config: Dir is empty")
	}
	return nil
}

// FileBackend appends newline-delimited JSON records into rotating zstd
// segments. The segment key is the wall-clock write time floored to the
// rotation interval; at most one segment is open at a time.
type FileBackend struct {
	cfg FileConfig

	file       *os.File
	enc        *zstd.Encoder
	segmentKey int64

	// now is overridable for rotation tests.
	now func() time.Time
}

// NewFileBackend ensures the target directory exists and prepares a closed
// backend; the first write opens the first segment.
func NewFileBackend(cfg FileConfig) (*FileBackend, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create sink directory")
	}
	return &FileBackend{cfg: cfg, segmentKey: -1, now: time.Now}, nil
}

// Write serializes one bar and appends it to the current segment, rotating
// first if the wall clock has crossed a rotation boundary.
func (b *FileBackend) Write(k model.Kline) error {
	interval := int64(b.cfg.RotationInterval / time.Second)
	key := b.now().Unix() / interval * interval
	if key != b.segmentKey {
		if err := b.rotate(key); err != nil {
			return err
		}
	}

	buf, err := json.Marshal(k)
	if err != nil {
		return errors.Wrap(err, "marshal kline record")
	}
	buf = append(buf, '\n')
	if _, err := b.enc.Write(buf); err != nil {
		return errors.Wrap(err, "write kline record")
	}
	return nil
}

// Flush finalizes the open compression frame so everything written so far is
// independently decompressible, then starts a fresh frame on the same file.
func (b *FileBackend) Flush() error {
	if b.enc == nil {
		return nil
	}
	if err := b.enc.Close(); err != nil {
		return errors.Wrap(err, "finalize segment frame")
	}
	b.enc.Reset(b.file)
	return nil
}

// Close finalizes and closes the current segment.
func (b *FileBackend) Close() error {
	if b.enc == nil {
		return nil
	}
	err := b.enc.Close()
	b.enc = nil
	if cerr := b.file.Close(); err == nil {
		err = cerr
	}
	b.file = nil
	return err
}

func (b *FileBackend) rotate(key int64) error {
	if b.enc != nil {
		if err := b.enc.Close(); err != nil {
			return errors.Wrap(err, "finalize previous segment")
		}
		if err := b.file.Close(); err != nil {
			return errors.Wrap(err, "close previous segment")
		}
		b.enc = nil
		b.file = nil
	}

	name := "kline_" + time.Unix(key, 0).In(segmentZone).Format(segmentTimeLayout) + ".zst"
	path := filepath.Join(b.cfg.Dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrap(err, "open segment file")
	}

	enc, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = file.Close()
		return errors.Wrap(err, "create segment encoder")
	}

	b.file = file
	b.enc = enc
	b.segmentKey = key
	logs.Infof("sink rotated to segment %s", name)
	return nil
}
