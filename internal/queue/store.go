// Package queue provides the durable message queue and the append-only
// sent log. Both are flat JSON files, each holding one serialized list of
// messages; every mutation is a full read-modify-write under one shared
// lock, and the file on disk is always a valid list.
package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	apperrors "chatrelay/internal/errors"
	"chatrelay/internal/models"
)

// Store owns the pending-queue file and the sent-log file. One mutex
// serializes every operation across both files: the delivery worker's
// snapshot-then-act pattern must not interleave with request-path appends.
type Store struct {
	mu        sync.Mutex
	queuePath string
	sentPath  string
}

// NewStore opens (or creates) the two backing files. Missing files are
// created holding an empty list.
func NewStore(queuePath, sentPath string) (*Store, error) {
	s := &Store{
		queuePath: queuePath,
		sentPath:  sentPath,
	}

	for _, path := range []string{queuePath, sentPath} {
		if err := ensureFile(path); err != nil {
			return nil, apperrors.NewPersistenceError("init", path, err)
		}
	}

	return s, nil
}

// Enqueue appends msg to the end of the pending queue.
func (s *Store) Enqueue(msg models.QueuedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(s.queuePath, msg)
}

// Snapshot returns a point-in-time copy of the full pending queue in
// insertion order.
func (s *Store) Snapshot() ([]models.QueuedMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, err := readList(s.queuePath)
	if err != nil {
		return nil, apperrors.NewPersistenceError("snapshot", s.queuePath, err)
	}
	return msgs, nil
}

// Remove deletes every entry value-equal to msg from the pending queue.
// Duplicates carry no distinguishing identity, so all of them go.
func (s *Store) Remove(msg models.QueuedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, err := readList(s.queuePath)
	if err != nil {
		return apperrors.NewPersistenceError("remove", s.queuePath, err)
	}

	kept := msgs[:0]
	for _, m := range msgs {
		if m != msg {
			kept = append(kept, m)
		}
	}

	if err := writeList(s.queuePath, kept); err != nil {
		return apperrors.NewPersistenceError("remove", s.queuePath, err)
	}
	return nil
}

// AppendSent records msg in the sent log. The log is audit-only and is
// never read back by the relay.
func (s *Store) AppendSent(msg models.QueuedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(s.sentPath, msg)
}

// QueuePath returns the pending-queue file path.
func (s *Store) QueuePath() string {
	return s.queuePath
}

func (s *Store) appendLocked(path string, msg models.QueuedMessage) error {
	msgs, err := readList(path)
	if err != nil {
		return apperrors.NewPersistenceError("append", path, err)
	}
	msgs = append(msgs, msg)
	if err := writeList(path, msgs); err != nil {
		return apperrors.NewPersistenceError("append", path, err)
	}
	return nil
}

func ensureFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return writeList(path, nil)
}

func readList(path string) ([]models.QueuedMessage, error) {
	data, err := os.ReadFile(path) // #nosec G304 - Paths validated at config load
	if err != nil {
		return nil, err
	}

	var msgs []models.QueuedMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// writeList replaces the file contents through a temp file and rename so a
// crash mid-write never leaves a torn list on disk.
func writeList(path string, msgs []models.QueuedMessage) error {
	if msgs == nil {
		msgs = []models.QueuedMessage{}
	}

	data, err := json.MarshalIndent(msgs, "", "    ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
