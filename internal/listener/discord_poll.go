package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"panebot/internal/config"
	"panebot/internal/notify"
	logx "panebot/pkg/logx"
)

// discordAPIBase is a var so tests can point the poller at a local server.
var discordAPIBase = "https://discord.com/api/v10"

type discordMessage struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Author  struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Bot      bool   `json:"bot"`
	} `json:"author"`
	MessageReference *struct {
		MessageID string `json:"message_id"`
	} `json:"message_reference"`
}

// snowflakeLess orders Discord snowflake ids numerically. They are decimal
// strings, so length then lexicographic comparison suffices.
func snowflakeLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// pollDiscord fetches channel messages after the persisted cursor and
// routes replies (messages referencing a tracked message) to their panes.
// The "after" parameter plus snowflake ordering gives the same forward-only
// semantics as the Telegram offset.
func (r *Runner) pollDiscord(ctx context.Context, dc config.DiscordConfig, opts listenerOpts) error {
	url := discordAPIBase + "/channels/" + dc.ChannelID + "/messages?limit=50"
	if cur := r.state.DiscordLastMessageID; cur != "" {
		url += "&after=" + cur
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+dc.BotToken)

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching messages: %w", err)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()

	r.respectRateLimit(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetching messages: status %d", resp.StatusCode)
	}

	var msgs []discordMessage
	if err := json.Unmarshal(body, &msgs); err != nil {
		return fmt.Errorf("decoding messages: %w", err)
	}

	// The API returns newest first; process chronologically.
	sort.Slice(msgs, func(i, j int) bool { return snowflakeLess(msgs[i].ID, msgs[j].ID) })

	for i := range msgs {
		m := &msgs[i]

		if cur := r.state.DiscordLastMessageID; cur == "" || snowflakeLess(cur, m.ID) {
			r.state.DiscordLastMessageID = m.ID
			if err := r.saveState(); err != nil {
				return fmt.Errorf("persisting cursor: %w", err)
			}
		}

		if m.Author.Bot || m.MessageReference == nil || m.MessageReference.MessageID == "" || m.Content == "" {
			continue
		}
		if !senderAllowed(dc.AllowedSenders, m.Author.ID, m.Author.Username) {
			r.log.Debug("discord reply from unlisted sender",
				logx.String("sender", m.Author.ID),
				logx.String("username", m.Author.Username))
			continue
		}

		mapping, err := r.reg.LookupByMessageID(notify.PlatformDiscordBot, m.MessageReference.MessageID)
		if err != nil {
			continue
		}

		if r.inject(mapping, m.Content, "discord", opts) {
			r.ackDiscord(ctx, dc, m.ID)
		}
	}
	return nil
}

// respectRateLimit honors Discord's rate-limit headers: when the bucket is
// exhausted, sleep out the reset window (capped) before the next request.
func (r *Runner) respectRateLimit(resp *http.Response) {
	if resp.Header.Get("X-RateLimit-Remaining") != "0" {
		return
	}
	wait := time.Second
	if v := resp.Header.Get("X-RateLimit-Reset-After"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			wait = time.Duration(secs * float64(time.Second))
		}
	}
	if wait > 5*time.Second {
		wait = 5 * time.Second
	}
	r.log.Debug("discord rate limit reached", logx.Duration("wait", wait))
	time.Sleep(wait)
}

// ackDiscord reacts to the reply with a white check mark, throttled and
// best-effort.
func (r *Runner) ackDiscord(ctx context.Context, dc config.DiscordConfig, messageID string) {
	if !r.ackLim.Allow() {
		return
	}
	url := discordAPIBase + "/channels/" + dc.ChannelID + "/messages/" + messageID + "/reactions/%E2%9C%85/@me"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
	if err != nil {
		return
	}
	req.Header.Set("Authorization", "Bot "+dc.BotToken)
	resp, err := r.http.Do(req)
	if err != nil {
		r.log.Debug("discord ack failed", logx.Err(err))
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
