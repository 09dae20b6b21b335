package persistence

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"civreply_server/pkg/apperr"
)

// =============================================================================
// Processed-ID Stores
// =============================================================================

const processedSetKey = "civreply:processed_ids"

// RedisProcessedStore implements out.ProcessedStore on a Redis set.
type RedisProcessedStore struct {
	client *redis.Client
}

// NewRedisProcessedStore creates the store.
func NewRedisProcessedStore(client *redis.Client) *RedisProcessedStore {
	return &RedisProcessedStore{client: client}
}

// Contains reports whether the message ID was already processed.
func (s *RedisProcessedStore) Contains(ctx context.Context, messageID string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, processedSetKey, messageID).Result()
	if err != nil {
		return false, apperr.DatabaseError("check processed id", err)
	}
	return ok, nil
}

// Add records a processed message ID.
func (s *RedisProcessedStore) Add(ctx context.Context, messageID string) error {
	if err := s.client.SAdd(ctx, processedSetKey, messageID).Err(); err != nil {
		return apperr.DatabaseError("add processed id", err)
	}
	return nil
}

// FileProcessedStore implements out.ProcessedStore on a local JSON
// file, for deployments without Redis. Writes go through a temp file
// and rename so a crash never truncates the state.
type FileProcessedStore struct {
	mu   sync.Mutex
	path string
	ids  map[string]bool
}

// NewFileProcessedStore loads or creates the state file.
func NewFileProcessedStore(path string) (*FileProcessedStore, error) {
	s := &FileProcessedStore{
		path: path,
		ids:  make(map[string]bool),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, apperr.DatabaseError("read processed state file", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		// A corrupt state file means reprocessing, not a crash loop.
		return s, nil
	}
	for _, id := range ids {
		s.ids[id] = true
	}
	return s, nil
}

// Contains reports whether the message ID was already processed.
func (s *FileProcessedStore) Contains(_ context.Context, messageID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[messageID], nil
}

// Add records a processed message ID and persists the set.
func (s *FileProcessedStore) Add(_ context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ids[messageID] {
		return nil
	}
	s.ids[messageID] = true

	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return apperr.DatabaseError("encode processed state", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperr.DatabaseError("create state dir", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperr.DatabaseError("write processed state", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return apperr.DatabaseError("replace processed state", err)
	}
	return nil
}
