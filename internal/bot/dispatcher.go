package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/robux-town/order-bot/internal/bot/handlers"
	"github.com/robux-town/order-bot/internal/wizard"
)

// Dispatcher routes free-text thread messages to stage-specific handlers
// based on the wizard session of the originating thread.
type Dispatcher struct {
	engine        wizard.Engine
	stageHandlers map[wizard.Stage]handlers.Handler
	log           *slog.Logger
	mu            sync.RWMutex
}

// NewDispatcher creates a Dispatcher with an empty handlers registry.
func NewDispatcher(engine wizard.Engine, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		engine:        engine,
		stageHandlers: make(map[wizard.Stage]handlers.Handler),
		log:           log,
	}
}

// RegisterStageHandler registers a handler for the provided wizard stage.
func (d *Dispatcher) RegisterStageHandler(s wizard.Stage, h handlers.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stageHandlers[s] = h
}

// Dispatch routes the message based on its thread's session stage. It returns
// the handler and true when the message belongs to an active session stage
// with a registered handler.
func (d *Dispatcher) Dispatch(c telebot.Context) (handlers.Handler, bool, error) {
	if c == nil {
		return nil, false, nil
	}

	threadID := handlers.ThreadID(c)
	if threadID == 0 {
		return nil, false, nil
	}

	ctx := context.Background()
	session, err := d.engine.GetSession(ctx, threadID)
	if err != nil {
		if errors.Is(err, wizard.ErrSessionNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	handler := d.getHandler(session.Stage)
	if handler == nil {
		d.log.Debug("no handler registered for stage",
			slog.String("stage", string(session.Stage)),
			slog.Int64("thread_id", threadID),
		)
		return nil, false, nil
	}

	return handler, true, nil
}

func (d *Dispatcher) getHandler(s wizard.Stage) handlers.Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stageHandlers[s]
}
