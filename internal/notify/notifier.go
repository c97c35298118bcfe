// Package notify broadcasts strategy signals and settled trades to webhook
// endpoints. Delivery is best effort: each URL is tried once, sequentially,
// and a failure is logged without blocking the pipeline or the other URLs.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/model"
)

const defaultRequestTimeout = 10 * time.Second

// Notifier posts JSON payloads to a fixed set of webhook URLs.
type Notifier struct {
	client *http.Client
	urls   []string
}

// New builds a notifier. An empty URL list yields a notifier that drops
// everything, which keeps webhooks optional in config.
func New(urls []string) *Notifier {
	return &Notifier{
		client: &http.Client{Timeout: defaultRequestTimeout},
		urls:   urls,
	}
}

type signalPayload struct {
	Strategy string       `json:"strategy"`
	Symbol   string       `json:"symbol"`
	Signal   model.Signal `json:"signal"`
	Time     string       `json:"time"`
}

type tradePayload struct {
	Strategy string      `json:"strategy"`
	Symbol   string      `json:"symbol"`
	Trade    model.Trade `json:"trade"`
	Time     string      `json:"time"`
}

type textPayload struct {
	Strategy string `json:"strategy"`
	Message  string `json:"message"`
	Time     string `json:"time"`
}

// Signal broadcasts one strategy signal.
func (n *Notifier) Signal(ctx context.Context, strategy, symbol string, sig model.Signal) {
	n.broadcast(ctx, signalPayload{
		Strategy: strategy,
		Symbol:   symbol,
		Signal:   sig,
		Time:     model.FormatTimeHS(time.Now().UnixMilli()),
	})
}

// Trade broadcasts one settled trade.
func (n *Notifier) Trade(ctx context.Context, strategy string, t model.Trade) {
	n.broadcast(ctx, tradePayload{
		Strategy: strategy,
		Symbol:   t.Symbol,
		Trade:    t,
		Time:     model.FormatTimeHS(time.Now().UnixMilli()),
	})
}

// Text broadcasts a plain status message, used for startup and liveness.
func (n *Notifier) Text(ctx context.Context, strategy, message string) {
	n.broadcast(ctx, textPayload{
		Strategy: strategy,
		Message:  message,
		Time:     model.FormatTimeHS(time.Now().UnixMilli()),
	})
}

func (n *Notifier) broadcast(ctx context.Context, payload any) {
	if len(n.urls) == 0 {
		return
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		logs.Errorf("marshal webhook payload: %+v", err)
		return
	}

	for _, url := range n.urls {
		if err := n.post(ctx, url, buf); err != nil {
			logs.Errorf("webhook %s: %+v", url, err)
		}
	}
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "deliver webhook")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("webhook responded %s", resp.Status)
	}
	return nil
}
