package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/wonny/warroom/internal/contracts"
	"github.com/wonny/warroom/pkg/logger"
)

const (
	// Push interval bounds
	defaultStreamInterval = 60 * time.Second
	minStreamInterval     = 10 * time.Second

	// Ping/Pong settings
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// StreamMessage is one websocket push
type StreamMessage struct {
	Type    string            `json:"type"` // "report" or "status"
	Report  *contracts.Report `json:"report,omitempty"`
	Status  contracts.Status  `json:"status"`
	Message string            `json:"message,omitempty"`
}

// StreamHandler pushes reports over a websocket
// ⭐ SSOT: 실시간 포트폴리오 푸시는 여기서만
type StreamHandler struct {
	service       ReportService
	source        string
	defaultTarget decimal.Decimal
	upgrader      websocket.Upgrader
	logger        *logger.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(service ReportService, source string, defaultTarget decimal.Decimal, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		service:       service,
		source:        source,
		defaultTarget: defaultTarget,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger: log,
	}
}

// ParseInterval reads a push interval, clamped to the minimum
func ParseInterval(raw string) time.Duration {
	if raw == "" {
		return defaultStreamInterval
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultStreamInterval
	}
	if d < minStreamInterval {
		return minStreamInterval
	}
	return d
}

// Stream upgrades the connection and pushes a report every interval.
// Reports come from the shared cache, so many clients cost one refresh.
// GET /ws/portfolio?interval=60s&target=
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	target, err := ParseTarget(r.URL.Query().Get("target"), h.defaultTarget)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	interval := ParseInterval(r.URL.Query().Get("interval"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reader: handles pong and detects close
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.WithField("interval", interval.String()).Info("Websocket client connected")

	push := time.NewTicker(interval)
	defer push.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := h.push(ctx, conn, target); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Websocket client disconnected")
			return
		case <-push.C:
			if err := h.push(ctx, conn, target); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandler) push(ctx context.Context, conn *websocket.Conn, target decimal.Decimal) error {
	msg := StreamMessage{Type: "report"}

	report, err := h.service.Report(ctx, h.source, target)
	switch {
	case err != nil:
		msg.Type = "status"
		msg.Status = contracts.StatusFor(err)
		msg.Message = contracts.StatusMessage(msg.Status)
	default:
		msg.Report = report
		msg.Status = report.Status
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.WithError(err).Debug("Websocket write failed")
		return err
	}
	return nil
}
