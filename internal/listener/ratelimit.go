package listener

import "time"

// replyLimiter admits at most max injections per sliding one-minute window.
// One instance lives for the daemon lifetime; only a restart resets it.
//
// Not safe for concurrent use, which is fine: platforms are polled
// sequentially within a tick.
type replyLimiter struct {
	max    int
	window time.Duration
	stamps []time.Time
	now    func() time.Time
}

func newReplyLimiter(max int) *replyLimiter {
	return &replyLimiter{
		max:    max,
		window: time.Minute,
		now:    time.Now,
	}
}

// Allow evicts expired stamps first, then admits iff the remaining count is
// under the cap. The new stamp is recorded only on admission, so rejected
// attempts do not extend the window.
func (l *replyLimiter) Allow() bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.stamps[:0]
	for _, t := range l.stamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.stamps = kept

	if len(l.stamps) >= l.max {
		return false
	}
	l.stamps = append(l.stamps, now)
	return true
}
