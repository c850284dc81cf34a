package listener

import (
	"strings"

	"panebot/internal/tmux"
)

// paneConfidence estimates whether a registry mapping still points at the
// live automation session. A missing pane is a hard zero. An existing pane
// starts at 0.5, gains 0.3 when its session name matches the one recorded
// at registration, and 0.2 when it has visible content.
//
// With the threshold at 0.5, pane existence alone is enough to inject; the
// bonus signals feed the logs so a borderline injection can be audited.
const confidenceThreshold = 0.5

const captureProbeLines = 50

func paneConfidence(t *tmux.Tmux, paneID, wantSession string) float64 {
	if paneID == "" || !t.HasPane(paneID) {
		return 0
	}

	score := 0.5
	if wantSession != "" {
		if sess, err := t.PaneSession(paneID); err == nil && sess == wantSession {
			score += 0.3
		}
	}
	if content, err := t.CapturePane(paneID, captureProbeLines); err == nil && strings.TrimSpace(content) != "" {
		score += 0.2
	}
	return score
}
