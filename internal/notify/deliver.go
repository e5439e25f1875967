package notify

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-hydration-backend/internal/domain"
)

// LogDeliverer writes every delivery to the structured log.
type LogDeliverer struct {
	log zerolog.Logger
}

// NewLogDeliverer returns a deliverer on the global logger.
func NewLogDeliverer() *LogDeliverer {
	return &LogDeliverer{log: log.With().Str("component", "delivery").Logger()}
}

// Name implements Deliverer.
func (*LogDeliverer) Name() string { return "log" }

// Deliver implements Deliverer.
func (l *LogDeliverer) Deliver(_ context.Context, d domain.Delivery) error {
	ev := l.log.Info().
		Str("id", d.Request.ID).
		Str("title", d.Request.Content.Title).
		Str("body", d.Request.Content.Body).
		Strs("present", d.Options.Strings()).
		Bool("sound", d.Request.Content.Sound && d.Options.Has(domain.PresentSound))
	if d.Category != nil {
		ids := make([]string, 0, len(d.Category.Actions))
		for _, a := range d.Category.Actions {
			ids = append(ids, a.ID)
		}
		ev = ev.Str("category", d.Category.ID).Strs("actions", ids)
	}
	ev.Msg("notification delivered")
	return nil
}
