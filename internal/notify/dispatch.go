package notify

import (
	"context"
	"time"

	"panebot/internal/config"
	logx "panebot/pkg/logx"
)

// buildSenders resolves the effective per-platform configs for an event and
// returns a sender for each enabled platform, in stable reporting order.
func buildSenders(nc *config.NotificationsConfig, event string) []Sender {
	var senders []Sender
	if tc := nc.EffectiveTelegram(event); tc.Enabled {
		senders = append(senders, newTelegramSender(tc))
	}
	if dc := nc.EffectiveDiscord(event); dc.Enabled {
		senders = append(senders, newDiscordSender(dc))
	}
	if sc := nc.EffectiveSlack(event); sc.Enabled {
		senders = append(senders, newSlackSender(sc))
	}
	if wc := nc.EffectiveWebhook(event); wc.Enabled {
		senders = append(senders, newWebhookSender(wc))
	}
	return senders
}

// payloadFor applies a per-platform message override, when one exists, by
// cloning the payload. The shared payload itself stays untouched.
func payloadFor(p *Payload, overrides map[string]string, platform string) *Payload {
	key := platform
	if key == PlatformDiscordBot {
		key = PlatformDiscord
	}
	msg, ok := overrides[key]
	if !ok || msg == "" {
		return p
	}
	clone := *p
	clone.Message = msg
	return &clone
}

// Dispatch fans the payload out to every platform enabled for the event.
// overrides optionally replaces the message text per platform key and may
// be nil.
//
// Each send runs in its own goroutine under the per-send timeout. The
// collection loop races "all sends settled" against the overall dispatch
// timeout; if the timeout wins, the still-unresolved sends are replaced by
// one synthetic timeout entry. Zero enabled platforms short-circuits with
// no network activity.
func Dispatch(ctx context.Context, nc *config.NotificationsConfig, event string, p *Payload, overrides map[string]string, log logx.Logger) DispatchResult {
	senders := buildSenders(nc, event)
	if len(senders) == 0 {
		return DispatchResult{Event: event, Results: []SendResult{}}
	}

	resCh := make(chan SendResult, len(senders))
	for _, s := range senders {
		go func(s Sender) {
			sctx, cancel := context.WithTimeout(ctx, sendTimeout)
			defer cancel()
			resCh <- s.Send(sctx, payloadFor(p, overrides, s.Platform()))
		}(s)
	}

	timer := time.NewTimer(dispatchTimeout)
	defer timer.Stop()

	results := make([]SendResult, 0, len(senders))
	timedOut := false
	for len(results) < len(senders) && !timedOut {
		select {
		case r := <-resCh:
			results = append(results, r)
			log.Debug("platform send settled",
				logx.String("event", event),
				logx.String("platform", r.Platform),
				logx.Bool("success", r.Success),
				logx.String("code", r.Error))
		case <-timer.C:
			// The straggler goroutines finish into the buffered channel and
			// get garbage collected with it.
			results = append(results, failure("dispatch", errDispatchFailed))
			timedOut = true
		}
	}

	out := DispatchResult{Event: event, Results: results}
	for _, r := range results {
		if r.Success {
			out.AnySuccess = true
			break
		}
	}
	return out
}
