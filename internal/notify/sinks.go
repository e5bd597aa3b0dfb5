package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"
)

// LogSink writes every event to the application log.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Deliver(_ context.Context, e Event) error {
	log.WithFields(log.Fields{
		"kind":      e.Kind,
		"meetup_id": e.MeetupID,
		"users":     e.UserIDs,
		"amount":    e.Amount,
	}).Info("Notification")
	return nil
}

// TelegramSink posts events to one Telegram chat, typically the
// organisers' group.
type TelegramSink struct {
	bot    *telego.Bot
	chatID int64
	loc    *time.Location
}

// NewTelegramSink validates the token and prepares the bot client.
func NewTelegramSink(token string, chatID int64, loc *time.Location) (*TelegramSink, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return &TelegramSink{bot: bot, chatID: chatID, loc: loc}, nil
}

func (s *TelegramSink) Name() string { return "telegram" }

func (s *TelegramSink) Deliver(ctx context.Context, e Event) error {
	msg := tu.Message(tu.ID(s.chatID), Format(e, s.loc))
	if _, err := s.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("failed to send Telegram message: %w", err)
	}
	return nil
}
