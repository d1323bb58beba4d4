package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/beer-stock/internal/core/domain"
	"github.com/rl1809/beer-stock/internal/port"
)

// id and name keys live in disjoint keyspaces so no id can address a name key
const (
	beerKeyPrefix     = "beer:id:"
	beerNameKeyPrefix = "beer:name:"
	beerIndexKey      = "beers"
)

var insertBeerScript = redis.NewScript(`
if redis.call('SETNX', KEYS[1], ARGV[1]) == 0 then
	return 0
end

redis.call('HSET', KEYS[2],
	'id', ARGV[1],
	'name', ARGV[2],
	'brand', ARGV[3],
	'max', ARGV[4],
	'quantity', ARGV[5],
	'type', ARGV[6],
	'version', 1)
redis.call('RPUSH', KEYS[3], ARGV[1])

return 1
`)

var updateQuantityScript = redis.NewScript(`
local key = KEYS[1]
local expected = tonumber(ARGV[1])
local quantity = tonumber(ARGV[2])

local version = redis.call('HGET', key, 'version')
if not version then
	return 0
end

if tonumber(version) ~= expected then
	return 0
end

local max = tonumber(redis.call('HGET', key, 'max'))
if quantity < 0 or quantity > max then
	return 0
end

redis.call('HSET', key, 'quantity', quantity)
return redis.call('HINCRBY', key, 'version', 1)
`)

var deleteBeerScript = redis.NewScript(`
local name = redis.call('HGET', KEYS[1], 'name')
if not name then
	return 0
end

redis.call('DEL', KEYS[1])
redis.call('DEL', ARGV[2] .. name)
redis.call('LREM', KEYS[2], 0, ARGV[1])

return 1
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) FindByID(ctx context.Context, id string) (*domain.Beer, error) {
	fields, err := r.client.HGetAll(ctx, beerKeyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall beer: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	beer, err := beerFromHash(fields)
	if err != nil {
		return nil, err
	}
	return &beer, nil
}

func (r *RedisAdapter) FindByName(ctx context.Context, name string) (*domain.Beer, error) {
	id, err := r.client.Get(ctx, beerNameKeyPrefix+name).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get beer name: %w", err)
	}

	return r.FindByID(ctx, id)
}

func (r *RedisAdapter) Save(ctx context.Context, beer domain.Beer) (domain.Beer, error) {
	if beer.ID == "" {
		return r.insert(ctx, beer)
	}
	return r.update(ctx, beer)
}

func (r *RedisAdapter) insert(ctx context.Context, beer domain.Beer) (domain.Beer, error) {
	id := uuid.New().String()
	keys := []string{beerNameKeyPrefix + beer.Name, beerKeyPrefix + id, beerIndexKey}

	result, err := insertBeerScript.Run(ctx, r.client, keys,
		id, beer.Name, beer.Brand, beer.Max, beer.Quantity, string(beer.Type),
	).Int()
	if err != nil {
		return domain.Beer{}, fmt.Errorf("insert beer: %w", err)
	}
	if result == 0 {
		return domain.Beer{}, port.ErrDuplicateName
	}

	beer.ID = id
	beer.Version = 1
	return beer, nil
}

func (r *RedisAdapter) update(ctx context.Context, beer domain.Beer) (domain.Beer, error) {
	version, err := updateQuantityScript.Run(ctx, r.client, []string{beerKeyPrefix + beer.ID},
		beer.Version, beer.Quantity,
	).Int()
	if err != nil {
		return domain.Beer{}, fmt.Errorf("update beer: %w", err)
	}
	if version == 0 {
		return domain.Beer{}, port.ErrOptimisticLock
	}

	beer.Version = version
	return beer, nil
}

func (r *RedisAdapter) DeleteByID(ctx context.Context, id string) error {
	result, err := deleteBeerScript.Run(ctx, r.client, []string{beerKeyPrefix + id, beerIndexKey},
		id, beerNameKeyPrefix,
	).Int()
	if err != nil {
		return fmt.Errorf("delete beer: %w", err)
	}
	if result == 0 {
		return port.ErrNotFound
	}

	return nil
}

func (r *RedisAdapter) FindAll(ctx context.Context) ([]domain.Beer, error) {
	ids, err := r.client.LRange(ctx, beerIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange beers: %w", err)
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, beerKeyPrefix+id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline hgetall: %w", err)
	}

	beers := make([]domain.Beer, 0, len(ids))
	for _, cmd := range cmds {
		fields := cmd.Val()
		// deleted between LRANGE and HGETALL
		if len(fields) == 0 {
			continue
		}
		beer, err := beerFromHash(fields)
		if err != nil {
			return nil, err
		}
		beers = append(beers, beer)
	}

	return beers, nil
}

func beerFromHash(fields map[string]string) (domain.Beer, error) {
	beer := domain.Beer{
		ID:    fields["id"],
		Name:  fields["name"],
		Brand: fields["brand"],
		Type:  domain.BeerType(fields["type"]),
	}

	var err error
	if beer.Max, err = strconv.Atoi(fields["max"]); err != nil {
		return domain.Beer{}, fmt.Errorf("parse max of beer %s: %w", beer.ID, err)
	}
	if beer.Quantity, err = strconv.Atoi(fields["quantity"]); err != nil {
		return domain.Beer{}, fmt.Errorf("parse quantity of beer %s: %w", beer.ID, err)
	}
	if beer.Version, err = strconv.Atoi(fields["version"]); err != nil {
		return domain.Beer{}, fmt.Errorf("parse version of beer %s: %w", beer.ID, err)
	}

	return beer, nil
}
