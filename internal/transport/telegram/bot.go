package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sandevgo/docchat/internal/config"
	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/service/chat"
	"github.com/sandevgo/docchat/internal/service/command"
	"github.com/sandevgo/docchat/internal/service/ingest"
	"github.com/sandevgo/docchat/internal/service/voice"
	"github.com/sandevgo/docchat/internal/session"
	"github.com/sandevgo/docchat/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

const (
	greetingText = "Send me a PDF and then ask questions about it. Voice messages work too. /help lists commands."
	busyText     = "An upload is already in progress."
)

// Backend is everything the bot asks the document server for.
type Backend interface {
	core.ChatBackend
	core.TranscribeBackend
	core.IngestBackend
}

// chatState is the per-chat session and the controllers bound to it.
type chatState struct {
	session *session.Context
	chat    *chat.Controller
	ingest  *ingest.Controller
}

type Bot struct {
	bot      *tele.Bot
	out      *sender
	backend  Backend
	store    core.SessionStore
	poll     core.PollConfig
	commands *command.Router
	ownerID  int64

	mu    sync.Mutex
	chats map[int64]*chatState
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	backend Backend,
	store core.SessionStore,
	poll core.PollConfig,
	commands *command.Router,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		out:      newSender(b),
		backend:  backend,
		store:    store,
		poll:     poll,
		commands: commands,
		ownerID:  cfg.OwnerID,
		chats:    make(map[int64]*chatState),
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: Only allow the owner
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || c.Sender().ID != bot.ownerID {
				return nil // Ignore unauthorized users
			}
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle(tele.OnText, bot.handleMessage)
	b.Handle(tele.OnDocument, bot.handleDocument)
	b.Handle(tele.OnVoice, bot.handleVoice)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) state(chatID int64) *chatState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.chats[chatID]; ok {
		return s
	}
	sess := session.NewContext(b.store, fmt.Sprintf("telegram-%d", chatID))
	s := &chatState{
		session: sess,
		chat:    chat.NewController(b.backend, sess),
		ingest:  ingest.NewController(b.backend, sess, b.poll),
	}
	b.chats[chatID] = s
	return s
}

func (b *Bot) chatView(ctx context.Context, c tele.Context) *chatView {
	return newChatView(ctx, c.Recipient(), b.out, func() { _ = c.Notify(tele.Typing) })
}

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(greetingText)
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	s := b.state(c.Chat().ID)

	if reply, ok := b.commands.Execute(ctx, s.session.ID(), c.Text()); ok {
		return b.out.sendMarkdown(ctx, c.Recipient(), reply)
	}

	// The apology has already been sent; the error is only logged.
	if _, err := s.chat.Send(ctx, b.chatView(ctx, c), c.Text()); err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("telegram chat turn failed")
	}
	return nil
}

func (b *Bot) handleDocument(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	s := b.state(c.Chat().ID)
	doc := c.Message().Document

	dir, err := os.MkdirTemp("", "docchat-upload-*")
	if err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	defer os.RemoveAll(dir)

	name := filepath.Base(doc.FileName)
	path := filepath.Join(dir, name)
	if ingest.HasValidExtension(name) {
		if err := b.bot.Download(&doc.File, path); err != nil {
			logger.Error().Err(err).Str("file", name).Msg("failed to download telegram document")
			return c.Send(ingest.ErrorPrefix + ingest.UploadFailedText)
		}
	}

	view := &uploadView{ctx: ctx, to: c.Recipient(), out: b.out}
	nav := &navigator{ctx: ctx, to: c.Recipient(), out: b.out, fileName: name}

	// Upload has read the file by the time it returns; polling continues
	// in the background.
	if _, err := s.ingest.Upload(ctx, view, nav, path); err != nil {
		if errors.Is(err, ingest.ErrBusy) {
			return c.Send(busyText)
		}
		logger.Debug().Err(err).Msg("telegram upload not started")
	}
	return nil
}

func (b *Bot) handleVoice(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	s := b.state(c.Chat().ID)

	rc, err := b.bot.File(&c.Message().Voice.File)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch telegram voice")
		return c.Send(voice.NotUnderstood)
	}
	defer rc.Close()

	audio, err := io.ReadAll(rc)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read telegram voice")
		return c.Send(voice.NotUnderstood)
	}

	// Telegram already recorded the clip, so only delivery is needed.
	controller := voice.NewController(nil, b.backend, s.chat, b.chatView(ctx, c))
	if err := controller.Deliver(ctx, audio); err != nil {
		logger.Debug().Err(err).Msg("telegram voice turn failed")
	}
	return nil
}
