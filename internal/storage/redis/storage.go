package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/snapguess/internal/model"
	"github.com/mcoot/snapguess/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	key := playerKey(player.ID)

	// Track registration order for new players only
	existed, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if existed == 0 {
		if err := s.client.RPush(ctx, playerOrderKey(), string(player.ID)).Err(); err != nil {
			return err
		}
	}

	return s.client.Set(ctx, key, data, s.cfg.PlayerTTL).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	ids, err := s.client.LRange(ctx, playerOrderKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(ids))
	for _, id := range ids {
		player, err := s.GetPlayer(ctx, model.PlayerID(id))
		if err != nil {
			if errors.Is(err, model.ErrPlayerNotFound) {
				// Player expired but remains in the order index
				continue
			}
			return nil, err
		}
		players = append(players, player)
	}
	return players, nil
}

// Snap history operations

func (s *Storage) AppendSnap(ctx context.Context, snap *model.Snap) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	key := snapHistoryKey()
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-s.cfg.HistoryLimit), -1)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) RecentSnaps(ctx context.Context, n int) ([]*model.Snap, error) {
	if n <= 0 {
		return nil, nil
	}

	items, err := s.client.LRange(ctx, snapHistoryKey(), int64(-n), -1).Result()
	if err != nil {
		return nil, err
	}

	snaps := make([]*model.Snap, 0, len(items))
	for _, item := range items {
		var snap model.Snap
		if err := json.Unmarshal([]byte(item), &snap); err != nil {
			return nil, err
		}
		snaps = append(snaps, &snap)
	}
	return snaps, nil
}

// Noun lexicon operations

func (s *Storage) GetNounWords(ctx context.Context) ([]string, error) {
	words, err := s.client.SMembers(ctx, nounWordsKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, model.ErrLexiconNotLoaded
	}
	return words, nil
}

func (s *Storage) SaveNounWords(ctx context.Context, words []string) error {
	key := nounWordsKey()

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(words) > 0 {
		members := make([]interface{}, len(words))
		for i, w := range words {
			members[i] = w
		}
		pipe.SAdd(ctx, key, members...)
	}
	_, err := pipe.Exec(ctx)
	return err
}
