// Package bot wires the gateway, codec, session store and navigation
// machine together: it long-polls Telegram, dispatches each event through
// the state machine under the session's per-key lock, and renders the
// resulting view back.
package bot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"DayMate/internal/callback"
	"DayMate/internal/config"
	"DayMate/internal/gateway"
	"DayMate/internal/nav"
	"DayMate/internal/session"
	"DayMate/internal/telemetry"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Bot represents the main application
type Bot struct {
	cfg     *config.Config
	db      *sql.DB
	logger  *slog.Logger
	tracer  trace.Tracer
	meter   metric.Meter
	cleanup func()

	gw      *gateway.Client
	store   *session.Store
	machine *nav.Machine
}

// New creates a new Bot instance
func New(cfg *config.Config) (*Bot, error) {
	logger, err := telemetry.InitLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := context.Background()
	tracer, meter, cleanup, err := telemetry.InitTelemetry(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	db, err := telemetry.InitDB()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.Debug {
		logger.Info("Debug mode enabled")
	}

	return &Bot{
		cfg:     cfg,
		db:      db,
		logger:  logger,
		tracer:  tracer,
		meter:   meter,
		cleanup: cleanup,
		gw:      gateway.NewClient(cfg.Token, logger),
		store:   session.NewStore(cfg.SessionTTL(), cfg.DefaultTimezone, time.Now),
		machine: nav.New(cfg, time.Now),
	}, nil
}

// count bumps a named counter, creating it on first use.
func (b *Bot) count(ctx context.Context, name string) {
	counter, err := b.meter.Int64Counter(name)
	if err != nil {
		b.logger.Warn("failed to create counter", "name", name, "error", err)
		return
	}
	counter.Add(ctx, 1)
}

// Run long-polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	defer b.db.Close()
	defer b.cleanup()

	go b.sweepLoop(ctx)

	b.logger.Info("bot started", "default_timezone", b.cfg.DefaultTimezone)

	var offset int64
	for {
		updates, err := b.gw.GetUpdates(ctx, offset, b.cfg.PollWait())
		if err != nil {
			if ctx.Err() != nil {
				b.logger.Info("bot stopping")
				return nil
			}
			b.logger.Error("failed to fetch updates", "error", err)
			time.Sleep(3 * time.Second)
			continue
		}
		for _, upd := range updates {
			offset = upd.UpdateID + 1
			b.handleUpdate(ctx, upd)
		}
	}
}

// sweepLoop evicts idle sessions on the configured cadence. Eviction is
// advisory; a swept session materializes fresh on the next callback.
func (b *Bot) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.SweepEvery())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if evicted := b.store.Sweep(now); evicted > 0 {
				b.logger.Info("swept idle sessions", "evicted", evicted, "remaining", b.store.Len())
				b.count(ctx, "sessions.swept")
			}
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd gateway.Update) {
	ctx, span := b.tracer.Start(ctx, "handle_update")
	defer span.End()

	logger := b.logger.With("request_id", uuid.NewString(), "update_id", upd.UpdateID)
	b.count(ctx, "updates.received")

	switch {
	case upd.CallbackQuery != nil:
		b.handleCallback(ctx, logger, upd.CallbackQuery)
	case upd.Message != nil:
		b.handleMessage(ctx, logger, upd.Message)
	}
}

// handleMessage answers /start and any plain message with a fresh main
// menu; the bot is button-only thereafter.
func (b *Bot) handleMessage(ctx context.Context, logger *slog.Logger, msg *gateway.Message) {
	view := b.machine.Render(&session.Session{})
	if _, err := b.gw.SendMessage(ctx, msg.Chat.ID, view.Text, markup(view)); err != nil {
		logger.Error("failed to send main menu", "error", err)
		return
	}
	logger.Info("sent main menu", "chat_id", msg.Chat.ID)
}

func (b *Bot) handleCallback(ctx context.Context, logger *slog.Logger, cb *gateway.CallbackQuery) {
	if cb.Message == nil {
		logger.Warn("callback without message, ignoring", "callback_id", cb.ID)
		return
	}
	b.count(ctx, "callbacks.received")

	if err := b.gw.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		logger.Warn("failed to answer callback", "error", err)
	}

	key := session.Key{ChatID: cb.Message.Chat.ID, MessageID: cb.Message.MessageID}

	tok, err := callback.Decode(cb.Data)
	if err != nil {
		// Stale buttons from a previous bot lifetime land here; re-render
		// the current state unchanged instead of surfacing an error.
		logger.Debug("undecodable callback, treating as no-op", "error", err)
		b.count(ctx, "callbacks.decode_errors")
		tok = callback.Token{Kind: callback.KindNoop}
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while handling callback", "panic", r, "data", cb.Data)
			b.count(ctx, "callbacks.panics")
			b.renderFailure(ctx, logger, key)
		}
	}()

	var view nav.View
	var completed session.Flow
	b.store.Do(key, func(s *session.Session) {
		before := s.Screen
		view = b.machine.Transition(s, tok)
		if s.Screen == session.ScreenResultView && before != session.ScreenResultView {
			completed = s.Flow
		}
	})

	if err := b.gw.EditMessageText(ctx, key.ChatID, key.MessageID, renderText(view), markup(view)); err != nil {
		logger.Error("failed to edit message", "error", err)
		return
	}

	if completed != session.FlowNone {
		b.count(ctx, "calculations.completed")
		go b.recordCalculation(completed)
	}
}

// renderFailure leaves the session alone and presents a generic notice
// with a main-menu escape so the user is never stuck.
func (b *Bot) renderFailure(ctx context.Context, logger *slog.Logger, key session.Key) {
	kb := &gateway.InlineKeyboardMarkup{InlineKeyboard: [][]gateway.InlineKeyboardButton{
		{{Text: "🏠 Menu", CallbackData: "menu_main"}},
	}}
	text := "Something went wrong. Please return to the menu."
	if err := b.gw.EditMessageText(ctx, key.ChatID, key.MessageID, text, kb); err != nil {
		logger.Error("failed to render failure view", "error", err)
	}
}

// recordCalculation writes one anonymous usage row to the stats database.
func (b *Bot) recordCalculation(flow session.Flow) {
	kind := "unknown"
	switch flow {
	case session.FlowAge:
		kind = "age"
	case session.FlowDays:
		kind = "days"
	case session.FlowTime:
		kind = "time"
	}
	if _, err := b.db.Exec(
		"INSERT INTO calculations (kind, created_at) VALUES (?, ?)", kind, time.Now(),
	); err != nil {
		b.logger.Warn("failed to record calculation", "kind", kind, "error", err)
	}
}

func renderText(v nav.View) string {
	if v.Notice == "" {
		return v.Text
	}
	return v.Text + "\n\n⚠ " + v.Notice
}

func markup(v nav.View) *gateway.InlineKeyboardMarkup {
	kb := make([][]gateway.InlineKeyboardButton, 0, len(v.Keyboard))
	for _, row := range v.Keyboard {
		buttons := make([]gateway.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, gateway.InlineKeyboardButton{
				Text:         btn.Label,
				CallbackData: btn.Data,
			})
		}
		kb = append(kb, buttons)
	}
	return &gateway.InlineKeyboardMarkup{InlineKeyboard: kb}
}
