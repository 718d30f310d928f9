package store

import (
	"log/slog"

	"github.com/sadopc/hyperfocus/internal/session"
)

const snapshotKey = "snapshot"

// LoadSnapshot returns the saved session snapshot. ok is false when there
// is none or it was written with another schema version, in which case
// it is discarded.
func (s *Store) LoadSnapshot() (snap session.Snapshot, ok bool) {
	snap = Load(s, snapshotKey, session.Snapshot{})
	switch snap.Version {
	case session.SchemaVersion:
		return snap, true
	case 0:
		return session.Snapshot{}, false
	default:
		s.logger.Warn("discarding snapshot with unknown schema",
			"version", snap.Version, "want", session.SchemaVersion)
		if err := s.Delete(snapshotKey); err != nil {
			s.logger.Error("delete snapshot", "error", err)
		}
		return session.Snapshot{}, false
	}
}

// SaveSnapshot stores snap as the single state record.
func (s *Store) SaveSnapshot(snap session.Snapshot) error {
	return Save(s, snapshotKey, snap)
}

// Persist subscribes to m and saves every durable change. Failures are
// logged; the machine keeps running on its in-memory state.
func (s *Store) Persist(m *session.Machine, logger *slog.Logger) (unsubscribe func()) {
	if logger == nil {
		logger = s.logger
	}
	return m.Subscribe(func(c session.Change) {
		if !c.Durable {
			return
		}
		if err := s.SaveSnapshot(c.Snapshot); err != nil {
			logger.Error("save snapshot", "error", err)
		}
	})
}
