package cache

import (
	"context"
	"errors"
)

// Memory is the translation memory contract shared by the sqlite store
// and RedisCache.
type Memory interface {
	Lookup(ctx context.Context, sourceText, sourceLang, targetLang, backend string) (string, bool, error)
	Remember(ctx context.Context, sourceText, sourceLang, targetLang, backend, text string) error
}

// Layered checks each tier in order. A hit in a later tier is copied into
// the earlier ones; Remember writes to every tier.
type Layered struct {
	tiers []Memory
}

func NewLayered(tiers ...Memory) *Layered {
	var kept []Memory
	for _, t := range tiers {
		if t != nil {
			kept = append(kept, t)
		}
	}
	return &Layered{tiers: kept}
}

// Lookup returns the first hit. Errors from individual tiers are returned
// only when no tier produced a hit.
func (l *Layered) Lookup(ctx context.Context, sourceText, sourceLang, targetLang, backend string) (string, bool, error) {
	var errs []error
	for i, tier := range l.tiers {
		text, found, err := tier.Lookup(ctx, sourceText, sourceLang, targetLang, backend)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !found {
			continue
		}
		for _, earlier := range l.tiers[:i] {
			if err := earlier.Remember(ctx, sourceText, sourceLang, targetLang, backend, text); err != nil {
				errs = append(errs, err)
			}
		}
		return text, true, nil
	}
	return "", false, errors.Join(errs...)
}

func (l *Layered) Remember(ctx context.Context, sourceText, sourceLang, targetLang, backend, text string) error {
	var errs []error
	for _, tier := range l.tiers {
		if err := tier.Remember(ctx, sourceText, sourceLang, targetLang, backend, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
