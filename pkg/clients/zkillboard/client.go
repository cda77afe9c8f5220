package zkillboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bravecollective/bravebucks/pkg/types"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	minReconnectionDelay = 1 * time.Second
	maxReconnectionDelay = 2 * time.Second
	keepAliveInterval    = 60 * time.Second
)

type subscribeMessage struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// KillmailSubscriber maintains a subscription to the zKillboard killstream and
// emits decoded killmails on a channel. The feed is lossy: killmails published
// while the subscriber is reconnecting are not replayed.
type KillmailSubscriber struct {
	wsUrl     string
	logger    *zap.Logger
	killmails chan *types.Killmail
}

func NewKillmailSubscriber(wsUrl string, l *zap.Logger) *KillmailSubscriber {
	return &KillmailSubscriber{
		wsUrl:     wsUrl,
		logger:    l,
		killmails: make(chan *types.Killmail),
	}
}

// Killmails is the stream of decoded killmails. Closed when Start returns.
func (ks *KillmailSubscriber) Killmails() <-chan *types.Killmail {
	return ks.killmails
}

// Start connects and reads until the context is cancelled, reconnecting with a
// bounded delay whenever the connection drops.
func (ks *KillmailSubscriber) Start(ctx context.Context) {
	defer close(ks.killmails)

	delay := minReconnectionDelay
	for {
		if ctx.Err() != nil {
			return
		}

		err := ks.consume(ctx)
		if err != nil {
			ks.logger.Sugar().Warnw("Connection to zKillboard websocket lost", zap.Error(err))
		}
		if ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxReconnectionDelay {
			delay = maxReconnectionDelay
		}
	}
}

func (ks *KillmailSubscriber) consume(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, ks.wsUrl, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.WriteJSON(subscribeMessage{Action: "sub", Channel: "killstream"}); err != nil {
		return err
	}
	ks.logger.Sugar().Info("Connected to zKillboard websocket")

	// The feed drops idle connections, so send an empty payload periodically.
	keepAliveDone := make(chan struct{})
	defer close(keepAliveDone)
	go func() {
		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-keepAliveDone:
				return
			case <-ctx.Done():
				_ = conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.TextMessage, []byte("{}")); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		killmail := &types.Killmail{}
		if err := json.Unmarshal(message, killmail); err != nil {
			ks.logger.Sugar().Warnw("Failed to decode killstream message", zap.Error(err))
			continue
		}
		if killmail.KillmailID == 0 {
			continue
		}

		select {
		case ks.killmails <- killmail:
		case <-ctx.Done():
			return nil
		}
	}
}
