package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mwisniak/football-tournaments/models"
)

const rankingTTL = 5 * time.Minute

// RankingCache keeps computed league tables in redis so repeated
// standings reads skip the full recomputation. Entries expire after
// five minutes and are invalidated whenever a league match finishes.
type RankingCache struct {
	client *redis.Client
}

func NewRankingCache(client *redis.Client) *RankingCache {
	return &RankingCache{client: client}
}

func rankingKey(tournamentID int) string {
	return fmt.Sprintf("ranking:%d", tournamentID)
}

// Get returns the cached standings, or (nil, nil) on a miss.
func (c *RankingCache) Get(ctx context.Context, tournamentID int) ([]models.TeamStanding, error) {
	payload, err := c.client.Get(ctx, rankingKey(tournamentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read ranking cache: %w", err)
	}

	var standings []models.TeamStanding
	if err := json.Unmarshal(payload, &standings); err != nil {
		return nil, fmt.Errorf("failed to decode cached ranking: %w", err)
	}
	return standings, nil
}

func (c *RankingCache) Set(ctx context.Context, tournamentID int, standings []models.TeamStanding) error {
	payload, err := json.Marshal(standings)
	if err != nil {
		return fmt.Errorf("failed to encode ranking for cache: %w", err)
	}
	if err := c.client.Set(ctx, rankingKey(tournamentID), payload, rankingTTL).Err(); err != nil {
		return fmt.Errorf("failed to write ranking cache: %w", err)
	}
	return nil
}

func (c *RankingCache) Invalidate(ctx context.Context, tournamentID int) error {
	if err := c.client.Del(ctx, rankingKey(tournamentID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate ranking cache: %w", err)
	}
	return nil
}
