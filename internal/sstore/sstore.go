// Package sstore implements the S-store: the interned-string arena every
// other store in cc0 references by offset instead of carrying copies of the
// same identifier text. It is the storage layer's simplest member — a
// single append-only file of `<len:1><bytes><0x00>` entries — but it is the
// one every symbol and token ultimately points through.
//
// Grounded on the teacher's internal/storage.New bootstrap-and-recover
// discipline (discover existing state, then either continue an existing
// file or start fresh) and internal/index's in-memory hash table (same
// "keep the lookup structure in memory, the payload on disk" shape), but
// simplified to a single file: the S-store is one arena per spec, not a
// family of rotating segments.
package sstore

import (
	"context"
	stdErrors "errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/iamNilotpal/cc0/internal/hashfn"
	"github.com/iamNilotpal/cc0/pkg/errors"
	"github.com/iamNilotpal/cc0/pkg/filesys"
	"go.uber.org/zap"
)

// NoOffset is the sentinel offset meaning "no string" (spec's `0`).
const NoOffset uint16 = 0

// ErrOffset is the sentinel offset meaning "lookup failed" (spec's `0xFFFF`).
const ErrOffset uint16 = 0xFFFF

// maxEntryLen is the largest string the single-byte length prefix can hold.
const maxEntryLen = 255

var (
	ErrClosed    = stdErrors.New("sstore: operation failed: store is closed")
	ErrTooLong   = stdErrors.New("sstore: string exceeds 255 bytes")
	ErrNotFound  = stdErrors.New("sstore: no string at offset")
	ErrCorrupted = stdErrors.New("sstore: entry framing is corrupted")
)

// Store is the interned-string arena. Intern is idempotent: interning the
// same bytes twice returns the same offset both times, backed by an
// in-memory hash->offset directory rebuilt from the file on Open.
type Store struct {
	mu   sync.Mutex
	log  *zap.SugaredLogger
	file *os.File

	// dir maps a string's hash bucket to every offset with that bucket,
	// mirroring the teacher's index.Index: the lookup structure lives in
	// memory, the string bytes live on disk.
	dir     map[int][]uint16
	size    uint16 // current end-of-file offset; the next Intern lands here.
	closed  atomic.Bool
	buckets int
}

// Config carries the parameters needed to open a Store.
type Config struct {
	DataDir     string
	FileName    string
	Logger      *zap.SugaredLogger
	HashBuckets int
}

// Open creates the S-store file if it doesn't exist, or replays it to
// rebuild the in-memory intern directory if it does — the teacher's
// "discover existing state on startup" bootstrap, specialized to a single
// file instead of a segment set.
func Open(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil || cfg.DataDir == "" || cfg.FileName == "" || cfg.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "sstore configuration is required",
		).WithField("config").WithRule("required").WithProvided(cfg)
	}

	buckets := cfg.HashBuckets
	if buckets <= 0 {
		buckets = 128
	}

	if err := filesys.CreateDir(cfg.DataDir, 0755, true); err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to create store directory").
			WithPath(cfg.DataDir)
	}

	path := filepath.Join(cfg.DataDir, cfg.FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to open sstore file").
			WithFileName(cfg.FileName).WithPath(path)
	}

	st := &Store{
		log:     cfg.Logger,
		file:    f,
		dir:     make(map[int][]uint16, buckets),
		buckets: buckets,
	}

	if err := st.rebuild(); err != nil {
		f.Close()
		return nil, err
	}

	cfg.Logger.Infow("sstore opened", "path", path, "entries", st.size)
	return st, nil
}

// reservedZeroEntry is the placeholder occupying offset 0 of every fresh
// S-store file: a zero-length string record, so NoOffset (spec's "0 means
// none") never collides with a real interned string's offset.
var reservedZeroEntry = []byte{0x00, 0x00}

// rebuild replays the file from offset 0, reinstating the in-memory intern
// directory. Run once on Open; after that the directory is maintained
// incrementally by Intern.
func (s *Store) rebuild() error {
	info, err := s.file.Stat()
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat sstore file")
	}

	if info.Size() == 0 {
		if _, err := s.file.WriteAt(reservedZeroEntry, 0); err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to write reserved offset-0 entry")
		}
		s.size = uint16(len(reservedZeroEntry))
		return nil
	}

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to seek sstore file")
	}

	var offset uint16
	lenBuf := make([]byte, 1)
	for int64(offset) < info.Size() {
		if _, err := io.ReadFull(s.file, lenBuf); err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeSegmentCorrupted, "truncated sstore entry header").
				WithOffset(int(offset))
		}

		n := int(lenBuf[0])
		entry := make([]byte, n+1) // bytes + trailing 0x00
		if _, err := io.ReadFull(s.file, entry); err != nil {
			return errors.NewStorageError(err, errors.ErrorCodeSegmentCorrupted, "truncated sstore entry body").
				WithOffset(int(offset))
		}
		if entry[n] != 0x00 {
			return ErrCorrupted
		}

		// The reserved offset-0 entry is never indexed, matching a fresh
		// store where Intern never returns NoOffset.
		if offset != NoOffset {
			h := hashfn.Sum(entry[:n])
			b := hashfn.Bucket(h, s.buckets)
			s.dir[b] = append(s.dir[b], offset)
		}

		offset += uint16(1 + n + 1)
	}

	s.size = offset
	return nil
}

// Intern returns the offset of s within the arena, appending it if this is
// the first time these bytes have been seen.
func (s *Store) Intern(str string) (uint16, error) {
	if s.closed.Load() {
		return ErrOffset, ErrClosed
	}
	if len(str) > maxEntryLen {
		return ErrOffset, ErrTooLong
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := hashfn.Sum([]byte(str))
	b := hashfn.Bucket(h, s.buckets)
	for _, off := range s.dir[b] {
		existing, err := s.getLocked(off)
		if err != nil {
			return ErrOffset, err
		}
		if existing == str {
			return off, nil
		}
	}

	offset := s.size
	record := make([]byte, 0, 1+len(str)+1)
	record = append(record, byte(len(str)))
	record = append(record, []byte(str)...)
	record = append(record, 0x00)

	if _, err := s.file.WriteAt(record, int64(offset)); err != nil {
		return ErrOffset, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to append sstore entry").
			WithOffset(int(offset))
	}

	s.dir[b] = append(s.dir[b], offset)
	s.size = offset + uint16(len(record))

	return offset, nil
}

// Get returns the interned string at offset.
func (s *Store) Get(offset uint16) (string, error) {
	if s.closed.Load() {
		return "", ErrClosed
	}
	if offset == NoOffset || offset == ErrOffset {
		return "", ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getLocked(offset)
}

func (s *Store) getLocked(offset uint16) (string, error) {
	lenBuf := make([]byte, 1)
	if _, err := s.file.ReadAt(lenBuf, int64(offset)); err != nil {
		return "", errors.NewStorageError(err, errors.ErrorCodeIO, "failed to read sstore entry header").
			WithOffset(int(offset))
	}

	n := int(lenBuf[0])
	entry := make([]byte, n+1)
	if _, err := s.file.ReadAt(entry, int64(offset)+1); err != nil {
		return "", errors.NewStorageError(err, errors.ErrorCodeIO, "failed to read sstore entry body").
			WithOffset(int(offset))
	}
	if entry[n] != 0x00 {
		return "", ErrCorrupted
	}

	return string(entry[:n]), nil
}

// Close flushes and closes the underlying file. Safe to call once; a
// second call returns ErrClosed like the teacher's index.Close.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.dir)
	s.dir = nil

	if err := s.file.Sync(); err != nil {
		s.file.Close()
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to sync sstore file")
	}

	return s.file.Close()
}
