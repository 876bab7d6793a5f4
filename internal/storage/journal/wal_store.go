// Package journal persists finished cycle reports in a write-ahead log.
package journal

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/navarb/internal/events"
)

const (
	DefaultDir   = "./wal/cycles"
	segmentLimit = 500
	maxSegments  = 20

	cycleKeyPrefix = "cycle_"
)

// WALStore appends one record per cycle. Old segments are dropped by the WAL itself.
type WALStore struct {
	wal    *gowal.Wal
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewWALStore opens or creates the journal under dir.
func NewWALStore(dir string, logger *zap.Logger) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	wal, err := gowal.NewWAL(gowal.Config{
		Dir:              dir,
		Prefix:           "cycles_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init cycle journal")
	}

	return &WALStore{wal: wal, logger: logger}, nil
}

// Save appends r.
func (s *WALStore) Save(r events.CycleReport) error {
	if r.CycleID == "" {
		return errors.New("cycle report id is required")
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "marshal cycle report")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Write(s.wal.CurrentIndex()+1, cycleKeyPrefix+r.CycleID, payload)
}

// Publish saves r and logs instead of failing, so a full disk never stops trading.
func (s *WALStore) Publish(r events.CycleReport) {
	if err := s.Save(r); err != nil {
		s.logger.Warn("failed to journal cycle", zap.String("cycle_id", r.CycleID), zap.Error(err))
	}
}

// Recent returns up to limit reports, newest first.
func (s *WALStore) Recent(limit int) ([]events.CycleReport, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]events.CycleReport, 0, limit)
	for idx := s.wal.CurrentIndex(); idx > 0 && len(reports) < limit; idx-- {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			// index fell into a dropped segment
			break
		}
		if !strings.HasPrefix(key, cycleKeyPrefix) {
			continue
		}

		var r events.CycleReport
		if err := json.Unmarshal(payload, &r); err != nil {
			return nil, errors.Wrapf(err, "decode cycle report at %d", idx)
		}
		reports = append(reports, r)
	}

	return reports, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
