package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"
)

// sendTimeout bounds one platform send; dispatchTimeout bounds the whole
// fan-out and must stay >= sendTimeout so a single slow platform cannot be
// blamed on the dispatcher.
const (
	sendTimeout     = 10 * time.Second
	dispatchTimeout = 15 * time.Second
)

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: sendTimeout}
}

// newIPv4Client pins the transport to IPv4. Telegram's API resolves to
// AAAA records on some networks where the IPv6 route blackholes; tcp4
// sidesteps that.
func newIPv4Client() *http.Client {
	d := &net.Dialer{Timeout: sendTimeout}
	return &http.Client{
		Timeout: sendTimeout,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return d.DialContext(ctx, "tcp4", addr)
			},
		},
	}
}

// postJSON posts a JSON body and returns the status code and response body.
// The response body is capped to keep a misbehaving endpoint from ballooning
// memory.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body any) (int, []byte, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	rb, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode, rb, nil
}

// transportCode maps a transport error onto a short result code.
func transportCode(err error) string {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return errTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errTimeout
	}
	return errRequestFailed
}
