package services

import (
	"hangeul/config"

	"github.com/coocood/freecache"
	"github.com/rs/zerolog"
)

// SeedCache remembers users whose achievement rows already exist, so page
// loads skip the seeding insert.
type SeedCache interface {
	Seeded(userID uint) bool
	MarkSeeded(userID uint)
	Forget(userID uint)
}

type freeSeedCache struct {
	cache *freecache.Cache
	ttl   int
}

func NewSeedCache(conf *config.Config, log zerolog.Logger) SeedCache {
	if !conf.Cache.Enabled || conf.Cache.SizeMB <= 0 {
		log.Info().Msg("seed cache disabled")
		return noopSeedCache{}
	}

	log.Info().Int("size_mb", conf.Cache.SizeMB).Msg("seed cache initialized")
	return &freeSeedCache{
		cache: freecache.NewCache(conf.Cache.SizeMB * 1024 * 1024),
		ttl:   3600,
	}
}

func (c *freeSeedCache) Seeded(userID uint) bool {
	_, err := c.cache.GetInt(int64(userID))
	return err == nil
}

func (c *freeSeedCache) MarkSeeded(userID uint) {
	_ = c.cache.SetInt(int64(userID), []byte{1}, c.ttl)
}

func (c *freeSeedCache) Forget(userID uint) {
	c.cache.DelInt(int64(userID))
}

type noopSeedCache struct{}

func (noopSeedCache) Seeded(uint) bool { return false }
func (noopSeedCache) MarkSeeded(uint)  {}
func (noopSeedCache) Forget(uint)      {}
