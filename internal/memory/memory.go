// Package memory is a persistent translation memory: sentences translated
// once are stored per direction and served again without decoding.
package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.etcd.io/bbolt"
)

// ErrNotFound is returned by Get when no translation is stored.
var ErrNotFound = errors.New("translation not found")

// Entry is one stored translation.
type Entry struct {
	Text    string    `json:"text"`
	Score   float64   `json:"score"`
	Created time.Time `json:"created"`
}

// Options configures Open.
type Options struct {
	// Timeout bounds the wait for the file lock.
	Timeout time.Duration

	// ReadOnly opens the store without write access.
	ReadOnly bool
}

// DefaultOptions waits five seconds for the file lock.
func DefaultOptions() Options {
	return Options{Timeout: 5 * time.Second}
}

// Store is a bbolt-backed translation memory with one bucket per direction.
type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

// Open opens or creates the store at path.
func Open(path string, opts Options) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{
		Timeout:  opts.Timeout,
		ReadOnly: opts.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("open translation memory %s: %w", path, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Bucket returns the bucket name of a direction decoded with the given beam
// size. Greedy and beam translations of one sentence are kept apart.
func Bucket(src, tgt string, beam int) string {
	return src + "-" + tgt + "/" + strconv.Itoa(beam)
}

// Get returns the stored translation of source in direction dir.
func (s *Store) Get(dir, source string) (Entry, error) {
	var e Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(dir))
		if b == nil {
			return ErrNotFound
		}
		data := b.Get([]byte(source))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &e)
	})
	if err != nil {
		return Entry{}, fmt.Errorf("get %s %q: %w", dir, source, err)
	}
	return e, nil
}

// Put stores the translation of source in direction dir. A zero Created is
// set to the current time.
func (s *Store) Put(dir, source string, e Entry) error {
	if e.Created.IsZero() {
		e.Created = s.now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(dir))
		if err != nil {
			return err
		}
		return b.Put([]byte(source), data)
	})
	if err != nil {
		return fmt.Errorf("put %s %q: %w", dir, source, err)
	}
	return nil
}

// Len returns the number of translations stored for direction dir.
func (s *Store) Len(dir string) (int, error) {
	n := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket([]byte(dir)); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, err
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}
