package gateway

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rahul/planbench/internal/observability"
)

type TelegramGateway struct {
	Bot       *tgbotapi.BotAPI
	Responder *Responder
	Logger    *observability.Logger
}

func NewTelegramGateway(token string, responder *Responder, logger *observability.Logger) (*TelegramGateway, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	logger.Slog().Info("telegram authorized", "account", bot.Self.UserName)

	return &TelegramGateway{
		Bot:       bot,
		Responder: responder,
		Logger:    logger,
	}, nil
}

func (tg *TelegramGateway) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			tg.Bot.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			tg.handle(ctx, update.Message)
		}
	}
}

func (tg *TelegramGateway) handle(ctx context.Context, m *tgbotapi.Message) {
	user := ""
	if m.From != nil {
		user = m.From.UserName
	}
	tg.Logger.Slog().Info("telegram message", "user", user, "chat", m.Chat.ID, "text", m.Text)

	reply := tg.Responder.Reply(ctx, m.Text)
	if _, err := tg.Bot.Send(tgbotapi.NewMessage(m.Chat.ID, reply)); err != nil {
		tg.Logger.Slog().Error("telegram send failed", "chat", m.Chat.ID, "error", err)
	}
}

func (tg *TelegramGateway) Send(chatID string, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid chat ID: %s", chatID)
	}

	_, err = tg.Bot.Send(tgbotapi.NewMessage(id, text))
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}
