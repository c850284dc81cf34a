package listener

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"panebot/internal/config"
	"panebot/internal/registry"
	"panebot/internal/tmux"
	logx "panebot/pkg/logx"
)

// Defaults applied when the listener block leaves a field unset.
const (
	defaultPollInterval  = 10 * time.Second
	defaultMaxPerMinute  = 10
	defaultReplyMaxChars = 500

	listenerLogMaxBytes = 1 << 20
)

type listenerOpts struct {
	interval  time.Duration
	maxChars  int
	sourceTag bool
}

func resolveListenerOpts(lc config.ListenerConfig) listenerOpts {
	opts := listenerOpts{
		interval:  config.DurationOrDefault(lc.PollInterval, defaultPollInterval),
		maxChars:  lc.ReplyMaxChars,
		sourceTag: true,
	}
	if opts.maxChars <= 0 {
		opts.maxChars = defaultReplyMaxChars
	}
	if lc.SourceTag != nil {
		opts.sourceTag = *lc.SourceTag
	}
	return opts
}

// Runner is the in-process daemon: the poll loop plus everything it owns.
type Runner struct {
	stateDir string
	mgr      *config.Manager
	log      logx.Logger
	logSvc   *logx.Service

	reg *registry.Registry
	tm  *tmux.Tmux

	lim    *replyLimiter
	ackLim *rate.Limiter
	http   *http.Client

	state *DaemonState
}

func NewRunner(stateDir, cfgPath string) *Runner {
	return &Runner{
		stateDir: stateDir,
		mgr:      config.NewManager(cfgPath),
		reg:      registry.New(stateDir),
		tm:       tmux.NewTmux(),
		http:     &http.Client{Timeout: 10 * time.Second},
		// Acks are best-effort decoration; keep them from ever competing
		// with real sends.
		ackLim: rate.NewLimiter(rate.Every(2*time.Second), 3),
	}
}

// Run executes the poll loop until a stop signal arrives. It is the entry
// point of the forked child.
func (r *Runner) Run(parent context.Context) error {
	if err := os.MkdirAll(r.stateDir, 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	svc, log := logx.New(logx.Config{
		Level: "INFO",
		File: logx.FileConfig{
			Enabled:  true,
			Path:     LogPath(r.stateDir),
			MaxBytes: listenerLogMaxBytes,
		},
	})
	r.logSvc = svc
	r.log = log.With(logx.String("svc", "listener"))
	r.mgr.SetLogger(r.log)
	defer svc.Close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Confirm ownership: the parent wrote our pid before exec, but a direct
	// "listener run" invocation has no parent to do it.
	pid := os.Getpid()
	if err := os.WriteFile(PIDPath(r.stateDir), []byte(strconv.Itoa(pid)+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}

	r.state = LoadState(StatePath(r.stateDir))
	r.state.IsRunning = true
	r.state.PID = pid
	r.state.StartedAt = nowStamp()
	r.state.LastError = ""
	if err := r.saveState(); err != nil {
		return err
	}

	// Initial config decides logging and the limiter cap. A broken config
	// at startup is tolerated; ticks keep retrying the parse.
	maxPerMin := defaultMaxPerMinute
	if cfg, err := r.mgr.Load(); err == nil {
		if n := cfg.Listener.MaxRepliesPerMinute; n > 0 {
			maxPerMin = n
		}
		svc.Apply(logx.Config{
			Level: cfg.Logging.Level,
			File: logx.FileConfig{
				Enabled:  true,
				Path:     LogPath(r.stateDir),
				MaxBytes: logFileMax(cfg.Logging.File.MaxSizeKB),
			},
		})
	} else {
		r.log.Warn("initial config load failed", logx.Err(err))
	}
	r.lim = newReplyLimiter(maxPerMin)

	// The watcher only surfaces bad edits early; each tick re-parses the
	// file itself and that parse is authoritative.
	go func() { _ = r.mgr.Watch(ctx) }()

	// Hourly registry maintenance, independent of the poll cadence.
	cr := cron.New()
	_, _ = cr.AddFunc("@hourly", func() {
		if err := r.reg.PruneStale(registry.StaleAfter); err != nil {
			r.log.Warn("registry prune failed", logx.Err(err))
		}
	})
	cr.Start()
	defer cr.Stop()

	if !r.tm.IsAvailable() {
		r.log.Warn("tmux not available; replies cannot be injected")
	}

	r.log.Info("listener started", logx.Int("pid", pid), logx.String("state_dir", r.stateDir))

	for {
		opts, tickErr := r.tick(ctx)

		r.state.LastPollAt = nowStamp()
		wait := opts.interval
		if tickErr != nil {
			r.state.RecordError(tickErr)
			r.log.Warn("poll tick failed", logx.Err(tickErr))
			wait *= 2
		}
		if err := r.saveState(); err != nil {
			r.log.Error("state persist failed", logx.Err(err))
		}

		select {
		case <-ctx.Done():
			r.shutdown()
			return nil
		case <-time.After(wait):
		}
	}
}

func logFileMax(kb int) int64 {
	if kb <= 0 {
		return listenerLogMaxBytes
	}
	return int64(kb) * 1024
}

func (r *Runner) saveState() error {
	return r.state.Save(StatePath(r.stateDir))
}

func (r *Runner) shutdown() {
	r.state.IsRunning = false
	r.state.PID = 0
	if err := r.saveState(); err != nil {
		r.log.Error("final state persist failed", logx.Err(err))
	}
	_ = os.Remove(PIDPath(r.stateDir))
	r.log.Info("listener stopped")
}

// tick re-derives configuration, then polls each enabled platform
// sequentially. Platform failures are contained here; they surface as the
// tick error and never escape the loop.
func (r *Runner) tick(ctx context.Context) (listenerOpts, error) {
	cfg, err := r.mgr.Parse()
	if err != nil {
		return listenerOpts{interval: defaultPollInterval}, fmt.Errorf("config parse: %w", err)
	}
	opts := resolveListenerOpts(cfg.Listener)

	var tickErr error
	if tc := cfg.Notifications.Telegram; tc.Enabled && tc.BotToken != "" {
		if err := r.pollTelegram(ctx, tc, opts); err != nil {
			tickErr = fmt.Errorf("telegram poll: %w", err)
		}
	}
	if dc := cfg.Notifications.Discord; dc.Enabled && dc.BotToken != "" && dc.ChannelID != "" {
		if err := r.pollDiscord(ctx, dc, opts); err != nil {
			tickErr = fmt.Errorf("discord poll: %w", err)
		}
	}
	return opts, tickErr
}

// senderAllowed checks the explicit allow-list. No list means no senders:
// reply injection is opt-in per identity, never open by default.
func senderAllowed(allowed []string, id, username string) bool {
	for _, a := range allowed {
		if a == id {
			return true
		}
		if username != "" && (a == username || a == "@"+username) {
			return true
		}
	}
	return false
}

// inject runs the shared tail of the reply pipeline: admission, pane
// liveness, sanitization, injection. Returns true when text reached the
// pane.
func (r *Runner) inject(m *registry.SessionMapping, text, source string, opts listenerOpts) bool {
	if !r.lim.Allow() {
		r.log.Debug("reply rate limited", logx.String("platform", m.Platform), logx.String("pane", m.TmuxPaneID))
		return false
	}

	conf := paneConfidence(r.tm, m.TmuxPaneID, m.TmuxSessionName)
	if conf < confidenceThreshold {
		r.log.Info("pane gone, dropping mappings",
			logx.String("pane", m.TmuxPaneID),
			logx.Float64("confidence", conf))
		if err := r.reg.RemoveMessagesByPane(m.TmuxPaneID); err != nil {
			r.log.Warn("registry cleanup failed", logx.Err(err))
		}
		return false
	}

	clean := capRunes(sanitizeReply(text), opts.maxChars)
	if clean == "" {
		return false
	}
	if opts.sourceTag {
		clean = "[" + source + "] " + clean
	}

	if err := r.tm.SendText(m.TmuxPaneID, clean); err != nil {
		r.log.Warn("injection failed", logx.String("pane", m.TmuxPaneID), logx.Err(err))
		return false
	}

	r.state.MessagesInjected++
	if err := r.reg.MarkRead(m.Platform, m.MessageID); err != nil {
		r.log.Warn("marking mapping read failed", logx.Err(err))
	}
	r.log.Info("reply injected",
		logx.String("platform", m.Platform),
		logx.String("session", m.SessionID),
		logx.String("pane", m.TmuxPaneID),
		logx.Float64("confidence", conf))
	return true
}
