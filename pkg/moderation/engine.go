package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/CapsFridayBot/pkg/logger"
	"github.com/PancyStudios/CapsFridayBot/pkg/textscore"
	"github.com/PancyStudios/CapsFridayBot/pkg/warnings"
	"github.com/google/uuid"
)

const logPrefix = "CapsFriday"

// Options configures an Engine
type Options struct {
	Gate      Gate
	Whitelist *Whitelist
	Window    time.Duration
	Observers []Observer
	// Now overrides the clock; defaults to time.Now
	Now func() time.Time
}

// Engine runs the moderation state machine for every inbound message
type Engine struct {
	store     warnings.Store
	actions   Actions
	gate      Gate
	whitelist *Whitelist
	window    time.Duration
	observers []Observer
	now       func() time.Time
	locks     *KeyedMutex
}

// NewEngine creates an Engine. Gate is required; the window defaults to 15 minutes.
func NewEngine(store warnings.Store, actions Actions, opts Options) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("moderation: store is required")
	}
	if actions == nil {
		return nil, fmt.Errorf("moderation: actions are required")
	}
	if opts.Gate == nil {
		return nil, fmt.Errorf("moderation: gate is required")
	}

	e := &Engine{
		store:     store,
		actions:   actions,
		gate:      opts.Gate,
		whitelist: opts.Whitelist,
		window:    opts.Window,
		observers: opts.Observers,
		now:       opts.Now,
		locks:     NewKeyedMutex(),
	}
	if e.window <= 0 {
		e.window = DefaultWindow
	}
	if e.whitelist == nil {
		e.whitelist = NewWhitelist()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e, nil
}

// Window returns the configured warning window
func (e *Engine) Window() time.Duration {
	return e.window
}

// Active reports whether the policy is enforced right now
func (e *Engine) Active() bool {
	return e.gate.Active(e.now())
}

// AddObserver registers an observer. It must be called before messages are handled.
func (e *Engine) AddObserver(o Observer) {
	e.observers = append(e.observers, o)
}

// Handle applies the policy to msg. A returned error is always a *warnings.StorageError;
// the message is dropped and no further action is taken for it.
func (e *Engine) Handle(ctx context.Context, msg Message) (Decision, error) {
	now := e.now()
	d := Decision{
		ID:       uuid.NewString(),
		Identity: warnings.NormalizeIdentity(msg.Sender.Name),
		UserID:   msg.Sender.ID,
		Room:     msg.Room,
		Channel:  msg.Channel,
		At:       now,
	}

	if !e.gate.Active(now) {
		d.Outcome = OutcomeInactive
		e.notify(d)
		return d, nil
	}

	if e.whitelist.Contains(msg.Sender.Name, msg.Sender.ID) {
		logger.Debug(fmt.Sprintf("Usuario en whitelist, se omite: %s", msg.Sender.Name), logPrefix)
		d.Outcome = OutcomeWhitelisted
		e.notify(d)
		return d, nil
	}

	d.Score = textscore.Score(msg.Text)

	err := func() error {
		unlock := e.locks.Lock(d.Identity)
		defer unlock()
		return e.decide(ctx, msg, now, &d)
	}()
	if err != nil {
		d.Outcome = OutcomeAborted
	}
	e.notify(d)
	return d, err
}

// decide runs the read-decide-write sequence. Callers must hold the identity lock.
func (e *Engine) decide(ctx context.Context, msg Message, now time.Time, d *Decision) error {
	if textscore.IsCompliant(d.Score) {
		if err := e.store.Delete(ctx, d.Identity); err != nil {
			return err
		}
		d.Outcome = OutcomeCompliant
		return nil
	}

	previous, found, err := e.store.Get(ctx, d.Identity)
	if err != nil {
		return err
	}

	if !found {
		if err := e.store.Upsert(ctx, d.Identity, now); err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("Aviso a %s (primera falta, %.1f%%)", msg.Sender.Name, d.Score), logPrefix)
		e.notice(ctx, msg.Sender)
		d.Outcome = OutcomeWarned
		return nil
	}

	d.Previous = &previous

	if now.Sub(previous) < e.window {
		logger.Info(fmt.Sprintf("Expulsando a %s por segunda falta (%.1f%%)", msg.Sender.Name, d.Score), logPrefix)
		if err := e.actions.Kick(ctx, msg.Room, msg.Sender, KickReason); err != nil {
			logger.Warn(fmt.Sprintf("No se pudo expulsar a %s: %v", msg.Sender.Name, err), logPrefix)
		}
		if err := e.store.Delete(ctx, d.Identity); err != nil {
			return err
		}
		d.Outcome = OutcomeKicked
		return nil
	}

	if err := e.store.Upsert(ctx, d.Identity, now); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Aviso a %s (aviso anterior expirado, se renueva)", msg.Sender.Name), logPrefix)
	e.notice(ctx, msg.Sender)
	d.Outcome = OutcomeRenewed
	return nil
}

func (e *Engine) notice(ctx context.Context, to User) {
	if err := e.actions.Notice(ctx, to, WarningNotice); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo enviar el aviso a %s: %v", to.Name, err), logPrefix)
	}
}

func (e *Engine) notify(d Decision) {
	for _, o := range e.observers {
		o.Observe(d)
	}
}
