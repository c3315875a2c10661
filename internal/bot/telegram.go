// Package bot adapts the Telegram Bot API to the journal core: outbound it
// implements the Messenger used by notification dispatch, inbound it turns
// plain chat messages into journal entries dated today.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/solacejournal/solace-backend/internal/services"
)

const welcomeText = "Welcome to Solace! 🌿\n\n" +
	"This bot helps you journal your thoughts and feelings. Just send me any message and it will be saved as a journal entry.\n\n" +
	"You can also open the full app to:\n" +
	"• Browse past entries\n" +
	"• Rate your days\n" +
	"• Connect with your therapist\n" +
	"• Manage notifications"

// Bot wraps the Telegram API client.
type Bot struct {
	api        *tgbotapi.BotAPI
	miniAppURL string
}

// New authenticates against the Bot API. An empty token is a configuration
// error; callers should skip constructing the bot instead.
func New(token, miniAppURL string) (*Bot, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is empty")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Bot{api: api, miniAppURL: miniAppURL}, nil
}

// Send delivers a text message to a chat, with an optional inline link
// button. Implements services.Messenger.
func (b *Bot) Send(ctx context.Context, chatID int64, text string, button *services.LinkButton) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if button != nil {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL(button.Text, button.URL),
			),
		)
	}

	// The API client has no context support; honor cancellation around it.
	errCh := make(chan error, 1)
	go func() {
		_, err := b.api.Send(msg)
		errCh <- err
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Listen runs the long-polling loop until ctx is cancelled. A plain text
// message from a linked user becomes a journal entry dated today; /start
// replies with onboarding; everything else is ignored.
func (b *Bot) Listen(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("✅ Telegram bot listening for messages")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		if msg.Command() == "start" {
			b.sendOnboarding(ctx, msg.Chat.ID)
		}
		return
	}
	if msg.Text == "" {
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	user, err := services.UserByTelegramChatID(opCtx, msg.Chat.ID)
	if errors.Is(err, services.ErrNotFound) {
		// Unknown chat: the account link happens in the app, not here.
		log.Printf("[telegram] message from unlinked chat %d", msg.Chat.ID)
		return
	}
	if err != nil {
		log.Printf("[telegram] user lookup for chat %d: %v", msg.Chat.ID, err)
		return
	}

	today := time.Now()
	if _, err := services.CreateEntry(opCtx, user.ID, msg.Text, today); err != nil {
		log.Printf("[telegram] failed to save entry for user %s: %v", user.ID, err)
		b.reply(ctx, msg.Chat.ID, "Sorry, there was an error saving your entry. Please try again.", nil)
		return
	}

	dateStr := today.Format("Jan 2")
	viewURL := fmt.Sprintf("%s?date=%s", b.miniAppURL, today.Format("2006-01-02"))
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("✓ Saved for today, %s", dateStr), &services.LinkButton{Text: "View", URL: viewURL})
}

func (b *Bot) sendOnboarding(ctx context.Context, chatID int64) {
	b.reply(ctx, chatID, welcomeText, &services.LinkButton{Text: "Open App", URL: b.miniAppURL})
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string, button *services.LinkButton) {
	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := b.Send(sendCtx, chatID, text, button); err != nil {
		log.Printf("[telegram] reply to chat %d: %v", chatID, err)
	}
}
