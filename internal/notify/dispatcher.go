package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-hydration-backend/internal/domain"
	"github.com/tbourn/go-hydration-backend/internal/metrics"
	"github.com/tbourn/go-hydration-backend/internal/repo"
)

// Built-in action identifiers, reported when the user opens or dismisses a
// notification instead of pressing one of the category's buttons.
const (
	ActionDefault = "default"
	ActionDismiss = "dismiss"
)

// ErrUnknownAction is returned by HandleAction for action ids not declared
// by the request's category.
var ErrUnknownAction = errors.New("unknown notification action")

// Delegate decides how deliveries are presented and receives the user's
// responses.
type Delegate interface {
	WillPresent(ctx context.Context, req domain.ReminderRequest) domain.PresentationOptions
	DidReceive(ctx context.Context, resp domain.ActionResponse)
}

// Deliverer is one delivery channel.
type Deliverer interface {
	Name() string
	Deliver(ctx context.Context, d domain.Delivery) error
}

// Dispatcher fires due requests. It wakes on a ticker and whenever the
// center's pending set changes.
type Dispatcher struct {
	center     *Center
	delegate   Delegate
	deliverers []Deliverer
	interval   time.Duration
	batch      int
	notifyCh   chan struct{}
	log        zerolog.Logger
}

// NewDispatcher wires a dispatcher to center. interval <= 0 defaults to 30s.
func NewDispatcher(center *Center, delegate Delegate, interval time.Duration, deliverers ...Deliverer) *Dispatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	d := &Dispatcher{
		center:     center,
		delegate:   delegate,
		deliverers: deliverers,
		interval:   interval,
		batch:      100,
		notifyCh:   make(chan struct{}, 1),
		log:        log.With().Str("component", "dispatcher").Logger(),
	}
	center.OnChange(d.Notify)
	return d
}

// SetDelegate replaces the delegate. Call before Start.
func (d *Dispatcher) SetDelegate(del Delegate) { d.delegate = del }

// Notify triggers an immediate scan. Non-blocking if one is already pending.
func (d *Dispatcher) Notify() {
	select {
	case d.notifyCh <- struct{}{}:
	default:
	}
}

// Start runs the dispatch loop until ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	d.log.Info().Dur("interval", d.interval).Int("channels", len(d.deliverers)).Msg("dispatcher started")
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.runLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("dispatcher stopped")
			return
		case <-ticker.C:
			d.runLogged(ctx)
		case <-d.notifyCh:
			d.runLogged(ctx)
		}
	}
}

func (d *Dispatcher) runLogged(ctx context.Context) {
	if _, err := d.RunOnce(ctx); err != nil && ctx.Err() == nil {
		d.log.Error().Err(err).Msg("dispatch pass failed")
	}
}

// RunOnce delivers every request due now and returns how many fired.
// Repeating requests are moved to their next occurrence; one-shot requests
// are removed after firing.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	now := d.center.now()
	due, err := repo.DueNotifications(ctx, d.center.db, now, d.batch)
	if err != nil {
		return 0, fmt.Errorf("query due: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	status, err := d.center.AuthorizationStatus(ctx)
	if err != nil {
		return 0, fmt.Errorf("authorization: %w", err)
	}

	fired := 0
	for _, rec := range due {
		req := d.center.toRequest(rec)
		if status == domain.AuthorizationAuthorized {
			d.deliver(ctx, req, now)
			fired++
		} else {
			d.log.Debug().Str("id", req.ID).Str("status", string(status)).Msg("not authorized; delivery skipped")
		}
		if err := d.advance(ctx, rec, req.Trigger, now); err != nil {
			d.log.Error().Err(err).Str("id", rec.ID).Msg("advance request")
		}
	}
	return fired, nil
}

func (d *Dispatcher) deliver(ctx context.Context, req domain.ReminderRequest, now time.Time) {
	opts := domain.PresentBanner | domain.PresentSound | domain.PresentBadge
	if d.delegate != nil {
		opts = d.delegate.WillPresent(ctx, req)
	}
	cat, err := d.center.Category(ctx, req.Content.CategoryID)
	if err != nil {
		d.log.Warn().Err(err).Str("category", req.Content.CategoryID).Msg("load category")
	}
	delivery := domain.Delivery{Request: req, Category: cat, Options: opts, DeliveredAt: now}

	for _, ch := range d.deliverers {
		err := ch.Deliver(ctx, delivery)
		metrics.NotificationsDelivered.WithLabelValues(ch.Name(), metrics.Result(err == nil)).Inc()
		if err != nil {
			d.log.Error().Err(err).Str("channel", ch.Name()).Str("id", req.ID).Msg("delivery failed")
		}
	}

	if opts.Has(domain.PresentBadge) && req.Content.Badge != nil && *req.Content.Badge > 0 {
		if _, err := repo.IncrementBadge(ctx, d.center.db, 1); err != nil {
			d.log.Error().Err(err).Msg("increment badge")
		}
	}
}

func (d *Dispatcher) advance(ctx context.Context, rec domain.NotificationRecord, tr domain.Trigger, now time.Time) error {
	if !tr.Repeats() {
		_, err := repo.DeleteNotifications(ctx, d.center.db, rec.ID)
		return err
	}
	next, err := NextFire(tr, now, d.center.loc)
	if err != nil {
		return err
	}
	return repo.RescheduleNotification(ctx, d.center.db, rec.ID, next)
}

// HandleAction forwards the user's response to a delivered request to the
// delegate. actionID must be a built-in action or one declared by the
// request's category.
func (d *Dispatcher) HandleAction(ctx context.Context, requestID, actionID string) error {
	if actionID != ActionDefault && actionID != ActionDismiss {
		req, err := d.center.Get(ctx, requestID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("%w: request %q is no longer pending", ErrUnknownAction, requestID)
			}
			return err
		}
		cat, err := d.center.Category(ctx, req.Content.CategoryID)
		if err != nil {
			return err
		}
		if !hasAction(cat, actionID) {
			return fmt.Errorf("%w: %q", ErrUnknownAction, actionID)
		}
	}
	resp := domain.ActionResponse{RequestID: requestID, ActionID: actionID, At: d.center.now()}
	if d.delegate != nil {
		d.delegate.DidReceive(ctx, resp)
	}
	return nil
}

func hasAction(cat *domain.NotificationCategory, id string) bool {
	if cat == nil {
		return false
	}
	for _, a := range cat.Actions {
		if a.ID == id {
			return true
		}
	}
	return false
}
