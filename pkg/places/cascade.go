package places

import (
	"context"

	"go.uber.org/zap"

	"github.com/siamtrail/airtrip-cli/internal/model"
)

// Cascade tries each underlying provider in order, moving on when one fails
// or comes back empty. The first non-empty result wins.
type Cascade struct {
	providers []namedProvider
}

type namedProvider struct {
	name   string
	client Client
}

// NewCascade builds an empty cascade; add providers with Add in preference
// order.
func NewCascade() *Cascade {
	return &Cascade{}
}

// Add appends a provider to the cascade under a name used in logs.
func (c *Cascade) Add(name string, client Client) *Cascade {
	c.providers = append(c.providers, namedProvider{name: name, client: client})
	return c
}

func (c *Cascade) Search(ctx context.Context, province, placeType string, limit int) ([]model.Place, error) {
	var lastErr error
	for _, p := range c.providers {
		found, err := p.client.Search(ctx, province, placeType, limit)
		if err != nil {
			zap.L().Warn("places: provider failed, trying next",
				zap.String("provider", p.name),
				zap.String("province", province),
				zap.String("place_type", placeType),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		if len(found) == 0 {
			zap.L().Debug("places: provider returned nothing",
				zap.String("provider", p.name),
				zap.String("province", province),
				zap.String("place_type", placeType),
			)
			continue
		}
		return found, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}
