// Package stream broadcasts appended trade records to websocket subscribers.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/rosegoldcruz/theatom-sub000/business/ledger/domain"
	"github.com/rosegoldcruz/theatom-sub000/internal/logger"
)

const (
	writeTimeout  = 5 * time.Second
	subscriberBuf = 64
)

// Hub fans appended trade records out to connected websocket clients.
// Delivery is best-effort: a subscriber that cannot keep up is dropped
// rather than allowed to stall the settlement path.
type Hub struct {
	logger logger.LoggerInterface

	mu   sync.Mutex
	subs map[*subscriber]struct{}

	server *http.Server
}

type subscriber struct {
	ch chan []byte
}

// NewHub creates a hub with no subscribers.
func NewHub(log logger.LoggerInterface) *Hub {
	return &Hub{
		logger: log,
		subs:   make(map[*subscriber]struct{}),
	}
}

// Publish implements app.Publisher.
func (h *Hub) Publish(ctx context.Context, record domain.TradeRecord) {
	payload, err := json.Marshal(record)
	if err != nil {
		h.logger.Error(ctx, "trade record marshal failed", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.ch <- payload:
		default:
			// Slow consumer, drop it.
			close(sub.ch)
			delete(h.subs, sub)
		}
	}
}

// ServeHTTP upgrades the request to a websocket and streams records until
// the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket accept failed", "error", err)
		return
	}

	sub := &subscriber{ch: make(chan []byte, subscriberBuf)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if _, ok := h.subs[sub]; ok {
			delete(h.subs, sub)
		}
		h.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	ctx := r.Context()

	// Drain inbound frames so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-sub.ch:
			if !ok {
				conn.Close(websocket.StatusPolicyViolation, "subscriber too slow")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// Listen serves the hub on the given port until ctx is canceled.
func (h *Hub) Listen(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.Handle("/stream/trades", h)

	h.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.server.Shutdown(shutdownCtx)
	}()

	h.logger.Info(ctx, "trade stream listening", "port", port)
	if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
