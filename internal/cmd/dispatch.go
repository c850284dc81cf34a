package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"panebot/internal/config"
	"panebot/internal/listener"
	"panebot/internal/notify"
	"panebot/internal/registry"
	"panebot/internal/tmux"
	logx "panebot/pkg/logx"
)

func newDispatchCmd() *cobra.Command {
	var (
		event       string
		message     string
		sessionID   string
		tmuxSession string
		tmuxPane    string
		projectName string
		projectPath string
		modesUsed   []string
		durationMs  int64
		reason      string
		activeMode  string
		question    string
		overrides   map[string]string
	)

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Send a session event to every enabled platform",
		Long: `Dispatch fans the event out to all platforms enabled for it and prints
the per-platform results as JSON. Sends that return a platform message id
are registered with the session registry so the reply listener can route
replies back into the originating pane.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewManager(cfgPath).Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			log := logx.NewConsole(cfg.Logging.Level)

			tm := tmux.NewTmux()
			if tmuxPane == "" {
				tmuxPane = tm.CurrentPane()
			}
			if tmuxSession == "" {
				tmuxSession = tm.CurrentSession()
			}
			if sessionID == "" {
				sessionID = tmuxSession
			}

			payload := &notify.Payload{
				Event:       event,
				SessionID:   sessionID,
				Message:     message,
				Timestamp:   time.Now(),
				TmuxSession: tmuxSession,
				ProjectName: projectName,
				ProjectPath: projectPath,
				ModesUsed:   modesUsed,
				DurationMs:  durationMs,
				Reason:      reason,
				ActiveMode:  activeMode,
				Question:    question,
			}

			res := notify.Dispatch(cmd.Context(), &cfg.Notifications, event, payload, overrides, log)

			tracked := 0
			if tmuxPane != "" {
				reg := registry.New(config.StateDir(cfg))
				for _, sr := range res.Results {
					if !sr.Success || sr.MessageID == "" {
						continue
					}
					tracked++
					err := reg.Register(registry.SessionMapping{
						Platform:        sr.Platform,
						MessageID:       sr.MessageID,
						SessionID:       sessionID,
						TmuxPaneID:      tmuxPane,
						TmuxSessionName: tmuxSession,
						Event:           event,
					})
					if err != nil {
						log.Warn("registering mapping failed",
							logx.String("platform", sr.Platform),
							logx.String("message_id", sr.MessageID),
							logx.Err(err))
					}
				}
			}

			// A tracked send is only useful with someone listening for the
			// reply; bring the daemon up if the config asks for it.
			if tracked > 0 && cfg.Listener.Enabled {
				if pid, already, err := listener.Start(config.StateDir(cfg), cfgPath); err != nil {
					log.Warn("listener autostart failed", logx.Err(err))
				} else if !already {
					log.Info("listener started", logx.Int("pid", pid))
				}
			}

			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&event, "event", "", "event name (e.g. session-end)")
	cmd.Flags().StringVar(&message, "message", "", "notification text")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "session identifier (defaults to the tmux session)")
	cmd.Flags().StringVar(&tmuxSession, "tmux-session", "", "tmux session name (auto-detected inside tmux)")
	cmd.Flags().StringVar(&tmuxPane, "tmux-pane", "", "tmux pane id for reply injection (auto-detected inside tmux)")
	cmd.Flags().StringVar(&projectName, "project-name", "", "project name")
	cmd.Flags().StringVar(&projectPath, "project-path", "", "project path")
	cmd.Flags().StringSliceVar(&modesUsed, "mode", nil, "mode used during the session (repeatable)")
	cmd.Flags().Int64Var(&durationMs, "duration-ms", 0, "session duration in milliseconds")
	cmd.Flags().StringVar(&reason, "reason", "", "event reason")
	cmd.Flags().StringVar(&activeMode, "active-mode", "", "mode active when the event fired")
	cmd.Flags().StringVar(&question, "question", "", "open question awaiting an operator reply")
	cmd.Flags().StringToStringVar(&overrides, "message-for", nil, "per-platform message override (e.g. slack='short form')")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}
