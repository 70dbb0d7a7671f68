package reasoner

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ppiankov/ontomerge/internal/cache"
	"github.com/ppiankov/ontomerge/internal/logger"
	"github.com/ppiankov/ontomerge/internal/ontology"
)

// Cached wraps a factory so that ontologies with the same content are
// classified once. Only closure-backed reasoners are stored.
func Cached(c cache.Cache, ttl time.Duration, name string, inner Factory) Factory {
	log := logger.ComponentLogger("reasoner")
	return func(ctx context.Context, s ontology.Store) (Reasoner, error) {
		key := cache.CacheKey(ontology.Fingerprint(s), name)

		if data, ok := c.Get(key); ok {
			var cl Closure
			if err := json.Unmarshal(data, &cl); err == nil {
				log.Debugw("Closure cache hit", logger.FieldReasoner, name)
				return FromClosure(&cl), nil
			}
			log.Warnw("Discarding unreadable cached closure", logger.FieldReasoner, name)
			_ = c.Delete(key)
		}

		r, err := inner(ctx, s)
		if err != nil {
			return nil, err
		}
		if cr, ok := r.(*ClosureReasoner); ok {
			if data, err := json.Marshal(cr.Closure()); err == nil {
				if err := c.Set(key, data, ttl); err != nil {
					log.Warnw("Failed to cache closure", logger.FieldError, err.Error())
				}
			}
		}
		return r, nil
	}
}
