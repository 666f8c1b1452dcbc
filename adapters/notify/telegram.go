package notify

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Telegram delivers handshake notifications to the user's chat via the
// Bot API.
type Telegram struct {
	bot *telego.Bot
}

// NewTelegram creates a notifier using the given bot token.
func NewTelegram(token string) (*Telegram, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &Telegram{bot: bot}, nil
}

// NotifyWalletLinked tells the user their wallet is connected.
func (t *Telegram) NotifyWalletLinked(ctx context.Context, userID int64, address string) error {
	text := fmt.Sprintf("Wallet connected successfully!\n%s", address)
	_, err := t.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: tu.ID(userID),
		Text:   text,
	})
	return err
}

// Nop discards notifications; used in development and tests.
type Nop struct{}

// NotifyWalletLinked does nothing.
func (Nop) NotifyWalletLinked(ctx context.Context, userID int64, address string) error {
	return nil
}
