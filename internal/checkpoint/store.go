package checkpoint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/dgraph-io/badger/v4"
)

var (
	paramPrefix = []byte("param/")
	statePrefix = []byte("state/")
)

// Config selects where a Store keeps its data.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool
	// Logger receives badger's internal log lines. Nil silences them.
	Logger *slog.Logger
}

func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

func InMemoryConfig() Config {
	return Config{InMemory: true}
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store is a badger-backed dataset. Parameter chunks live under
// param/<offset> with the offset big-endian so key order is offset order;
// state snapshots live under state/<chunk>/<term>.
type Store struct {
	db *badger.DB
}

func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, ErrEmptyPath
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create checkpoint directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return ErrClosed
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func paramKey(start int) []byte {
	k := make([]byte, len(paramPrefix)+8)
	copy(k, paramPrefix)
	binary.BigEndian.PutUint64(k[len(paramPrefix):], uint64(start))
	return k
}

func encodeFloats(data []float64) []byte {
	buf := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

func decodeFloats(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("checkpoint: chunk of %d bytes is not a float64 array", len(buf))
	}
	out := make([]float64, len(buf)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return out, nil
}

// WriteChunk stores data at [start, start+len(data)). Writing over a range
// that is already populated is an error, as it is for Dataset.
func (s *Store) WriteChunk(start int, data []float64) error {
	if s.db == nil {
		return ErrClosed
	}
	if start < 0 {
		return fmt.Errorf("%w: %d", ErrNegative, start)
	}
	key := paramKey(start)
	end := start + len(data)
	return s.db.Update(func(txn *badger.Txn) error {
		off, n, ok, err := neighbourChunk(txn, key, true)
		if err != nil {
			return err
		}
		if ok && (off == start || start < off+n) {
			return fmt.Errorf("%w: [%d,%d) vs [%d,%d)", ErrOverlap, start, end, off, off+n)
		}
		off, n, ok, err = neighbourChunk(txn, key, false)
		if err != nil {
			return err
		}
		if ok && (off == start || off < end) {
			return fmt.Errorf("%w: [%d,%d) vs [%d,%d)", ErrOverlap, start, end, off, off+n)
		}
		return txn.Set(key, encodeFloats(data))
	})
}

// neighbourChunk finds the parameter chunk nearest to key: the last one at
// or before it when reverse is set, otherwise the first one at or after it.
// A read-write transaction allows one open iterator, so each lookup closes
// its own.
func neighbourChunk(txn *badger.Txn, key []byte, reverse bool) (off, n int, ok bool, err error) {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = reverse
	opts.Prefix = paramPrefix
	it := txn.NewIterator(opts)
	defer it.Close()

	it.Seek(key)
	if !it.ValidForPrefix(paramPrefix) {
		return 0, 0, false, nil
	}
	item := it.Item()
	off = int(binary.BigEndian.Uint64(item.Key()[len(paramPrefix):]))
	err = item.Value(func(val []byte) error {
		n = len(val) / 8
		return nil
	})
	return off, n, err == nil, err
}

// ResetParams drops every parameter chunk so a new run can write its
// records from offset zero. State snapshots are kept.
func (s *Store) ResetParams() error {
	if s.db == nil {
		return ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(paramPrefix); it.ValidForPrefix(paramPrefix); it.Next() {
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadAll returns every parameter chunk concatenated in offset order.
func (s *Store) ReadAll() ([]float64, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	var offs []int
	chunks := make(map[int][]float64)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(paramPrefix); it.ValidForPrefix(paramPrefix); it.Next() {
			item := it.Item()
			off := int(binary.BigEndian.Uint64(item.Key()[len(paramPrefix):]))
			err := item.Value(func(val []byte) error {
				data, err := decodeFloats(val)
				if err != nil {
					return err
				}
				chunks[off] = data
				return nil
			})
			if err != nil {
				return err
			}
			offs = append(offs, off)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return concat(offs, func(off int) []float64 { return chunks[off] })
}

func stateKey(chunk string, term int) []byte {
	return []byte(fmt.Sprintf("%s%s/%04d", statePrefix, chunk, term))
}

// SaveState stores a binary state snapshot for one term of a chunk,
// replacing any previous one.
func (s *Store) SaveState(chunk string, term int, snapshot []byte) error {
	if s.db == nil {
		return ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(stateKey(chunk, term), snapshot)
	})
}

func (s *Store) LoadState(chunk string, term int) ([]byte, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stateKey(chunk, term))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s term %d", ErrNoState, chunk, term)
	}
	return out, err
}

func stepKey(label string) []byte {
	return []byte(fmt.Sprintf("%s%s/step", statePrefix, label))
}

// SaveStep records the step a labelled snapshot was taken after.
func (s *Store) SaveStep(label string, step int) error {
	if s.db == nil {
		return ErrClosed
	}
	if step < 0 {
		return fmt.Errorf("%w: %d", ErrNegative, step)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(stepKey(label), binary.BigEndian.AppendUint64(nil, uint64(step)))
	})
}

func (s *Store) LoadStep(label string) (int, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	var step int
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stepKey(label))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("checkpoint: step record of %d bytes", len(val))
			}
			step = int(binary.BigEndian.Uint64(val))
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, fmt.Errorf("%w: %s step", ErrNoState, label)
	}
	return step, err
}
