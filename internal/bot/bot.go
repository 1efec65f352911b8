package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/robux-town/order-bot/internal/bot/handlers"
	"github.com/robux-town/order-bot/internal/bot/keyboard"
	apperrors "github.com/robux-town/order-bot/internal/errors"
	"github.com/robux-town/order-bot/internal/idempotency"
	"github.com/robux-town/order-bot/internal/middleware"
	"github.com/robux-town/order-bot/internal/repository"
	"github.com/robux-town/order-bot/internal/user"
	"github.com/robux-town/order-bot/internal/wizard"
	"github.com/robux-town/order-bot/pkg/config"
)

// Bot wraps telebot.Bot with the application dependencies required for
// handling updates.
type Bot struct {
	telebot            *telebot.Bot
	log                *slog.Logger
	cfg                config.Config
	engine             wizard.Engine
	threads            *threadHost
	router             *Router
	dispatcher         *Dispatcher
	keyboard           *keyboard.Builder
	errHandler         *apperrors.Handler
	idempotencyManager idempotency.Manager
	rateLimitMw        *middleware.RateLimitMiddleware
}

// New builds a telegram bot instance configured according to the application settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	engine wizard.Engine,
	orderRepo repository.OrderRepository,
	userService *user.Service,
	idempotencyManager idempotency.Manager,
	rateLimitMw *middleware.RateLimitMiddleware,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Bot.WebhookListen,
			Endpoint: &telebot.WebhookEndpoint{
				PublicURL: cfg.Bot.WebhookURL,
			},
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	kb := keyboard.NewBuilder(log)
	threads := newThreadHost(tb, cfg.Bot.TicketsChatID, log)
	dispatcher := NewDispatcher(engine, log)
	router := NewRouter(dispatcher, log)
	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)

	b := &Bot{
		telebot:            tb,
		log:                log,
		cfg:                cfg,
		engine:             engine,
		threads:            threads,
		router:             router,
		dispatcher:         dispatcher,
		keyboard:           kb,
		errHandler:         errHandler,
		idempotencyManager: idempotencyManager,
		rateLimitMw:        rateLimitMw,
	}

	b.setupRouter(orderRepo, userService)

	if b.rateLimitMw != nil {
		b.telebot.Use(b.rateLimitMw.Handle)
	}

	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping telegram bot...")
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

var _ wizard.Expirer = (*Bot)(nil)

// ExpireSession cancels an idle session and closes its thread. Implements
// wizard.Expirer for the session cleaner.
func (b *Bot) ExpireSession(ctx context.Context, threadID int64) error {
	_, err := b.engine.CancelSession(ctx, threadID)
	if err != nil {
		if errors.Is(err, wizard.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	if err := b.threads.Send(ctx, threadID, "This order timed out due to inactivity and has been cancelled.", nil); err != nil {
		b.log.Warn("failed to post expiry notice", slog.Int64("thread_id", threadID), slog.Any("error", err))
	}

	return b.threads.CloseThread(ctx, threadID)
}

func (b *Bot) setupRouter(orderRepo repository.OrderRepository, userService *user.Service) {
	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(middleware.Idempotency(b.idempotencyManager, b.log))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(AuthMiddleware(userService, b.log))
	b.router.Use(LastActiveMiddleware(userService))
	b.router.Use(middleware.Metrics)

	wizardHandlers := handlers.NewWizardHandlers(b.engine, b.threads, b.keyboard, b.log)
	for stage, handler := range wizardHandlers.StageHandlers() {
		b.dispatcher.RegisterStageHandler(stage, handler)
	}

	b.router.RegisterCommand(CommandStart, newStartCommandHandler())
	b.router.RegisterCommand(CommandHelp, newHelpCommandHandler())
	b.router.RegisterCommand(CommandCancel, handlers.NewCancelHandler(b.engine, b.threads, b.keyboard, b.log))

	b.router.RegisterCommand(CommandPanel,
		handlers.RequireStaff(b.cfg.Bot, b.log, handlers.NewPanelHandler(b.cfg, b.keyboard, b.log)))
	b.router.RegisterCommand(CommandDone,
		handlers.RequireStaff(b.cfg.Bot, b.log, handlers.NewDoneHandler(b.threads, b.log)))
	b.router.RegisterCommand(CommandOrders,
		handlers.RequireStaff(b.cfg.Bot, b.log, handlers.NewOrdersHandler(orderRepo, b.log)))

	b.router.RegisterCallback(CallbackOrderStart,
		handlers.NewOrderStartHandler(b.engine, b.threads, b.keyboard, b.log))
	b.router.RegisterCallback(CallbackWizardPrefix, wizardHandlers.StartDecision())
	b.router.RegisterCallback(CallbackConfirmPrefix, wizardHandlers.ConfirmDecision())
	b.router.RegisterCallback(CallbackMethodPrefix, wizardHandlers.MethodSelected())
	b.router.RegisterCallback(CallbackCoinPrefix, wizardHandlers.CoinSelected())
}

func (b *Bot) registerTelebotHandlers() {
	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}

func newStartCommandHandler() handlers.Handler {
	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		return c.Send("Welcome to Robux Town! Find the order panel and press the button to start a purchase.")
	}
}

func newHelpCommandHandler() handlers.Handler {
	return func(c telebot.Context) error {
		if c == nil {
			return nil
		}

		return c.Send("Press the Order Robux button on the panel to open a private order thread.\n" +
			"Inside your thread: follow the prompts, or /cancel to abort the order.")
	}
}
