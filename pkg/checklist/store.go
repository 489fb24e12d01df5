package checklist

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/helmcode/pr-impact/pkg/storage"
)

// Store persists checklist state per report key. Implementations never fail
// loudly: a store problem must not break the session using it.
type Store interface {
	Load(key Key) State
	Save(key Key, state State)
}

// KVStore keeps each key's state as a JSON object in a storage.KV.
type KVStore struct {
	kv     storage.KV
	logger *zap.Logger
}

func NewKVStore(kv storage.KV, logger *zap.Logger) *KVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KVStore{kv: kv, logger: logger.Named("checklist")}
}

// Load returns the saved state for key. Missing, unreadable and malformed
// entries all load as an empty state.
func (s *KVStore) Load(key Key) State {
	raw, ok, err := s.kv.Get(string(key))
	if err != nil {
		s.logger.Warn("Failed to read checklist state", zap.String("key", string(key)), zap.Error(err))
		return State{}
	}
	if !ok {
		return State{}
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		s.logger.Warn("Discarding malformed checklist state", zap.String("key", string(key)), zap.Error(err))
		return State{}
	}
	if st == nil {
		return State{}
	}
	return st
}

// Save writes state under key. Empty state is not written, and write errors
// are logged and dropped.
func (s *KVStore) Save(key Key, state State) {
	if len(state) == 0 {
		return
	}
	raw, err := json.Marshal(state)
	if err != nil {
		s.logger.Warn("Failed to encode checklist state", zap.String("key", string(key)), zap.Error(err))
		return
	}
	if err := s.kv.Set(string(key), raw); err != nil {
		s.logger.Warn("Failed to persist checklist state", zap.String("key", string(key)), zap.Error(err))
		return
	}
	s.logger.Debug("Persisted checklist state", zap.String("key", string(key)), zap.Int("entries", len(state)))
}
