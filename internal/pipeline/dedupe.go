package pipeline

import (
	"go.uber.org/zap"

	"github.com/siamtrail/airtrip-cli/internal/model"
	"github.com/siamtrail/airtrip-cli/internal/normalize"
)

// Dedupe removes places whose normalized names collide, keeping the first
// occurrence. Places carrying the unknown-name sentinel are always kept since
// nothing can be said about their identity. Order is preserved and the input
// slice is left untouched.
func Dedupe(places []model.Place) []model.Place {
	seen := make(map[string]struct{}, len(places))
	out := make([]model.Place, 0, len(places))

	for _, p := range places {
		key := normalize.Name(p.Name)
		if key == normalize.UnknownName {
			out = append(out, p)
			continue
		}
		if _, ok := seen[key]; ok {
			zap.L().Debug("dedupe: dropped duplicate place",
				zap.String("name", p.Name),
				zap.String("key", key),
			)
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}

	if removed := len(places) - len(out); removed > 0 {
		zap.L().Info("dedupe: removed duplicate places",
			zap.Int("original", len(places)),
			zap.Int("unique", len(out)),
			zap.Int("removed", removed),
		)
	}
	return out
}
