package store

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/kenisa/raai/internal/vault"
)

// ImageKey is the single vault key holding the serialized engine image.
const ImageKey = "kenisa.db"

// minSeedMembers is the threshold below which a restored image is
// considered under-populated and topped up with generated rows.
const minSeedMembers = 25

// Initialize restores the engine from the vault's saved image, or creates
// and seeds a fresh one when the image is absent or unreadable. The
// returned store has the vault attached, so every subsequent mutation
// persists. A corrupt image is logged and discarded in favor of a fresh
// seeded engine: availability over surfacing data loss.
func Initialize(v *vault.Vault) (*Store, error) {
	data, ok, err := v.Get(ImageKey)
	if err != nil {
		return nil, fmt.Errorf("read saved image: %w", err)
	}

	if ok {
		st, err := OpenImage(data)
		if err != nil {
			log.WithFields(log.Fields{
				"bytes": len(data),
				"err":   err,
			}).Warn("saved engine image is unreadable, recreating from scratch")
		} else {
			st.vault = v
			if err := st.topUp(); err != nil {
				st.Close()
				return nil, err
			}
			return st, nil
		}
	}

	st, err := New()
	if err != nil {
		return nil, err
	}
	st.vault = v

	st.mu.Lock()
	err = st.seedLocked(minSeedMembers)
	if err == nil {
		err = st.persistLocked()
	}
	st.mu.Unlock()
	if err != nil {
		st.Close()
		return nil, err
	}

	log.WithField("members", minSeedMembers).Info("created and seeded fresh engine")
	return st, nil
}

// topUp adds generated members when a restored image holds fewer than the
// seed threshold.
func (s *Store) topUp() error {
	n, err := s.CountMembers()
	if err != nil {
		return err
	}
	if n >= minSeedMembers {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seedMembersLocked(minSeedMembers - n); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"have":  n,
		"added": minSeedMembers - n,
	}).Info("topped up under-populated member table")
	return s.persistLocked()
}
