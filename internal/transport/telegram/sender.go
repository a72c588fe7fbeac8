package telegram

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/docchat/pkg/conv"
	"github.com/sandevgo/docchat/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const maxTelegramMsgLen = 4000 // Safety margin below 4096

// messenger is the part of *tele.Bot the views need.
type messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
}

type sender struct {
	bot messenger
}

func newSender(bot messenger) *sender {
	return &sender{bot: bot}
}

// sendMarkdown converts Markdown to Telegram HTML and sends it in chunks if needed.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, md string) error {
	logger := log.FromCtx(ctx)
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	if html == "" {
		return nil
	}

	for i, chunk := range splitHTML(html, maxTelegramMsgLen) {
		if _, err := s.bot.Send(to, chunk, tele.ModeHTML); err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return err
		}
	}
	return nil
}

// sendPlain sends text without a parse mode, chunked like sendMarkdown.
func (s *sender) sendPlain(ctx context.Context, to tele.Recipient, text string) error {
	for _, chunk := range splitHTML(strings.TrimSpace(text), maxTelegramMsgLen) {
		if _, err := s.bot.Send(to, chunk); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msg("failed to send telegram message")
			return err
		}
	}
	return nil
}

func (s *sender) sendText(ctx context.Context, to tele.Recipient, text string) *tele.Message {
	msg, err := s.bot.Send(to, text)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to send telegram message")
		return nil
	}
	return msg
}

func (s *sender) delete(ctx context.Context, msg *tele.Message) {
	if msg == nil {
		return
	}
	if err := s.bot.Delete(msg); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to delete telegram message")
	}
}

// splitHTML splits text into chunks respecting Telegram's limit.
// It tries to split at newlines to preserve formatting and never cuts
// inside a tag or a multibyte rune.
func splitHTML(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cut := maxLen
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/3 {
			cut = idx
		} else if lt := strings.LastIndex(text[:cut], "<"); lt > 0 && lt > strings.LastIndex(text[:cut], ">") {
			cut = lt
		}
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = maxLen
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	return chunks
}
