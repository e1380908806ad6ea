package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/zerr"
)

const entryExt = ".entry"

// record is the on-disk form of one entry. Entry.Data holds zstd-compressed bytes.
type record struct {
	Key   string            `cbor:"1,keyasint"`
	Entry domain.CacheEntry `cbor:"2,keyasint"`
}

// FileStore keeps one file per key under a directory.
type FileStore struct {
	dir     string
	now     func() time.Time
	encMode cbor.EncMode
	decMode cbor.DecMode
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "dir", dir)
	}

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err := encOptions.EncMode()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	decMode, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	return &FileStore{
		dir:     dir,
		now:     time.Now,
		encMode: encMode,
		decMode: decMode,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Get implements ports.ResultStore. Expired entries are removed.
func (s *FileStore) Get(_ context.Context, key string) (*domain.CacheEntry, error) {
	path := s.path(key)
	rec, err := s.read(path)
	if err != nil || rec == nil {
		return nil, err
	}

	if rec.Key != key {
		// Hash collision or foreign file.
		return nil, nil
	}
	if rec.Entry.Expired(s.now()) {
		_ = os.Remove(path)
		return nil, nil
	}

	data, err := s.decoder.DecodeAll(rec.Entry.Data, nil)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreDecodeFailed.Error()), "key", key)
	}
	entry := rec.Entry
	entry.Data = data
	return &entry, nil
}

// Put implements ports.ResultStore.
func (s *FileStore) Put(_ context.Context, key string, entry *domain.CacheEntry) error {
	rec := record{Key: key, Entry: *entry}
	rec.Entry.Data = s.encoder.EncodeAll(entry.Data, nil)

	data, err := s.encMode.Marshal(rec)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreEncodeFailed.Error()), "key", key)
	}

	if err := atomicWriteFile(s.path(key), data); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", key)
	}
	return nil
}

// Invalidate implements ports.ResultStore. It reads every entry to learn its key.
func (s *FileStore) Invalidate(ctx context.Context, prefix string) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	removed := 0
	var errs []error
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), entryExt) {
			continue
		}

		path := filepath.Join(s.dir, e.Name())
		if prefix != "" {
			rec, err := s.read(path)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if rec == nil || !strings.HasPrefix(rec.Key, prefix) {
				continue
			}
		}

		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path))
			continue
		}
		removed++
	}

	return removed, errors.Join(errs...)
}

func (s *FileStore) read(path string) (*record, error) {
	//nolint:gosec // Path is constructed from the store directory and a hashed key
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	var rec record
	if err := s.decMode.Unmarshal(data, &rec); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreDecodeFailed.Error()), "path", path)
	}
	return &rec, nil
}

func (s *FileStore) path(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(hash[:])+entryExt)
}

// atomicWriteFile writes data to a temporary file and renames it into place.
func atomicWriteFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
