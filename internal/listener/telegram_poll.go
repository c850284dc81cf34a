package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v4"

	"panebot/internal/config"
	"panebot/internal/notify"
	logx "panebot/pkg/logx"
)

// pollTelegram fetches updates past the persisted cursor and routes reply
// messages back to their panes.
//
// Cursor semantics follow the bot API: the cursor stores the highest seen
// update_id, and the request offset is cursor+1. The cursor is persisted
// before any injection it enables, including for updates that get filtered
// out, so the stream always moves forward.
func (r *Runner) pollTelegram(ctx context.Context, tc config.TelegramConfig, opts listenerOpts) error {
	bot, err := tele.NewBot(tele.Settings{
		Token:   tc.BotToken,
		Offline: true,
		Client:  telegramPollClient(),
	})
	if err != nil {
		return fmt.Errorf("building bot: %w", err)
	}

	payload := map[string]any{
		"offset":          r.state.TelegramLastUpdateID + 1,
		"timeout":         0,
		"allowed_updates": []string{"message"},
	}
	data, err := bot.Raw("getUpdates", payload)
	if err != nil {
		return fmt.Errorf("getUpdates: %w", err)
	}

	var resp struct {
		Ok     bool          `json:"ok"`
		Result []tele.Update `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("decoding updates: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("getUpdates: api not ok")
	}

	for i := range resp.Result {
		u := &resp.Result[i]

		if id := int64(u.ID); id > r.state.TelegramLastUpdateID {
			r.state.TelegramLastUpdateID = id
			if err := r.saveState(); err != nil {
				return fmt.Errorf("persisting cursor: %w", err)
			}
		}

		m := u.Message
		if m == nil || m.ReplyTo == nil || m.Sender == nil || m.Text == "" {
			continue
		}
		if !senderAllowed(tc.AllowedSenders, strconv.FormatInt(m.Sender.ID, 10), m.Sender.Username) {
			r.log.Debug("telegram reply from unlisted sender",
				logx.Int64("sender", m.Sender.ID),
				logx.String("username", m.Sender.Username))
			continue
		}

		mapping, err := r.reg.LookupByMessageID(notify.PlatformTelegram, strconv.Itoa(m.ReplyTo.ID))
		if err != nil {
			// Untracked message; the cursor already moved past it.
			continue
		}

		if r.inject(mapping, m.Text, "telegram", opts) {
			r.ackTelegram(bot, m)
		}
	}
	return nil
}

// ackTelegram confirms delivery with a reply, throttled and best-effort.
func (r *Runner) ackTelegram(bot *tele.Bot, m *tele.Message) {
	if !r.ackLim.Allow() {
		return
	}
	if _, err := bot.Send(m.Chat, "delivered to session", &tele.SendOptions{ReplyTo: m}); err != nil {
		r.log.Debug("telegram ack failed", logx.Err(err))
	}
}

func telegramPollClient() *http.Client {
	d := &net.Dialer{Timeout: 10 * time.Second}
	return &http.Client{
		Timeout: 15 * time.Second,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return d.DialContext(ctx, "tcp4", addr)
			},
		},
	}
}
