package permkit

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// maskCache stores computed masks in Redis, keyed by registry version and a
// digest of the canonical reference list. It never stores definitions: a
// registry mutation bumps the version and strands every earlier entry, which
// Redis reclaims via TTL.
type maskCache struct {
	redis   *redis.Client
	prefix  string
	ttl     time.Duration
	maxRefs int
}

func newMaskCache(redisClient *redis.Client, cfg CacheConfig) *maskCache {
	return &maskCache{
		redis:   redisClient,
		prefix:  cfg.KeyPrefix,
		ttl:     cfg.TTL,
		maxRefs: cfg.MaxRefsPerKey,
	}
}

// key derives the cache key for a reference list at a registry version.
// Returns false when the list is uncacheable (too long, or containing a
// reference shape with no stable identity).
func (c *maskCache) key(refs []Reference, version uint64) (string, bool) {
	if len(refs) == 0 || len(refs) > c.maxRefs {
		return "", false
	}

	var b strings.Builder
	for _, ref := range refs {
		switch v := ref.(type) {
		case nil:
			b.WriteString("z")
		case RawBits:
			b.WriteString("b:")
			b.WriteString(strconv.FormatUint(uint64(v), 16))
		case Name:
			b.WriteString("n:")
			b.WriteString(string(v))
		case *Permission:
			if v == nil {
				b.WriteString("z")
				break
			}
			// instances are used as-is, so identity must cover the
			// whole value, not just the name
			b.WriteString("p:")
			b.WriteString(string(v.name))
			b.WriteString(":")
			b.WriteString(strconv.FormatUint(uint64(v.bit), 16))
			for _, g := range v.grants {
				b.WriteString("+")
				b.WriteString(string(g))
			}
		case Definer:
			b.WriteString("n:")
			b.WriteString(string(v.PermissionName()))
		default:
			return "", false
		}
		b.WriteByte(0x1f)
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(b.String()))

	return c.prefix + ":v" + strconv.FormatUint(version, 10) + ":" +
		strconv.FormatUint(h.Sum64(), 16), true
}

func (c *maskCache) Get(ctx context.Context, key string) (Mask, bool, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	mask, err := decodeMaskRecord(data)
	if err != nil {
		// stale or foreign record; treat as a miss
		return 0, false, nil
	}
	return mask, true, nil
}

func (c *maskCache) Save(ctx context.Context, key string, mask Mask) error {
	if err := c.redis.Set(ctx, key, encodeMaskRecord(mask), c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}
