package notify

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"panebot/internal/config"
)

// Bot tokens look like "<numeric id>:<35-char secret>". Anything else is a
// copy-paste accident we reject before it hits the network.
var telegramTokenRe = regexp.MustCompile(`^[0-9]+:[A-Za-z0-9_-]{30,}$`)

type telegramSender struct {
	cfg config.TelegramConfig
}

func newTelegramSender(cfg config.TelegramConfig) *telegramSender {
	return &telegramSender{cfg: cfg}
}

func (s *telegramSender) Platform() string { return PlatformTelegram }

// chatTarget adapts a raw chat id string ("123456" or "@channel") into a
// telebot recipient without a getChat round trip.
type chatTarget string

func (c chatTarget) Recipient() string { return string(c) }

func (s *telegramSender) Send(ctx context.Context, p *Payload) SendResult {
	token := strings.TrimSpace(s.cfg.BotToken)
	if !telegramTokenRe.MatchString(token) {
		return failure(PlatformTelegram, errInvalidToken)
	}
	chatID := strings.TrimSpace(s.cfg.ChatID)
	if chatID == "" {
		return failure(PlatformTelegram, errInvalidChatID)
	}
	if !strings.HasPrefix(chatID, "@") {
		if _, err := strconv.ParseInt(chatID, 10, 64); err != nil {
			return failure(PlatformTelegram, errInvalidChatID)
		}
	}

	// Offline skips the getMe probe at construction; the send itself is the
	// connectivity check.
	bot, err := tele.NewBot(tele.Settings{
		Token:   token,
		Offline: true,
		Client:  newIPv4Client(),
	})
	if err != nil {
		return failure(PlatformTelegram, errInvalidToken)
	}

	text := composeText(PlatformTelegram, s.cfg.Mention, bodyText(p), telegramMaxChars)

	msg, err := bot.Send(chatTarget(chatID), text)
	if err != nil {
		return failure(PlatformTelegram, transportCode(err))
	}
	return success(PlatformTelegram, strconv.Itoa(msg.ID))
}
