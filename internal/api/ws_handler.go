package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"cvbuilder/internal/auth"
	"cvbuilder/internal/worker"
)

const (
	wsAuthTimeout     = 10 * time.Second
	wsMaxMessageBytes = 4096
	wsPingInterval    = 30 * time.Second
	wsPongWait        = 2 * wsPingInterval
	wsWriteWait       = 5 * time.Second
)

// WsHandler 把异步导出的完成/失败通知推送给浏览器。
// 浏览器握手时无法携带 Authorization 头，所以首条消息必须是 {"type":"auth","token":"..."}。
type WsHandler struct {
	redis    redis.UniversalClient
	auth     *auth.AuthService
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWsHandler(redisClient redis.UniversalClient, authService *auth.AuthService, logger *slog.Logger, allowedOrigins []string) *WsHandler {
	return &WsHandler{
		redis:  redisClient,
		auth:   authService,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(r.Header.Get("Origin"), r.Host, allowedOrigins)
			},
		},
	}
}

// originAllowed 放行非浏览器客户端；未配置白名单时只允许同源，否则要求精确匹配。
func originAllowed(origin, host string, allowed []string) bool {
	if origin == "" {
		return true
	}
	if len(allowed) > 0 {
		return slices.Contains(allowed, origin)
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, host)
}

type wsClientMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type wsServerMessage struct {
	Type   string `json:"type"`
	UserID uint   `json:"user_id,omitempty"`
}

var errWsAuth = errors.New("websocket auth failed")

// HandleConnection 升级连接，在 wsAuthTimeout 内完成鉴权，然后转发用户通知频道，直到任一端断开。
func (h *WsHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessageBytes)

	log := h.logger.With(slog.String("client_ip", c.ClientIP()))
	userID, err := h.authenticate(conn)
	if err != nil {
		log.Warn("websocket rejected", slog.Any("error", err))
		closeWs(conn, websocket.ClosePolicyViolation, "unauthorized")
		return
	}
	log = log.With(slog.Uint64("user_id", uint64(userID)))

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.redis.Subscribe(ctx, worker.NotifyChannel(userID))
	defer pubsub.Close()
	// 确认订阅已建立后再告知客户端，避免漏掉紧随其后的通知。
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Error("subscribe notify channel failed", slog.Any("error", err))
		closeWs(conn, websocket.CloseInternalServerErr, "notifications unavailable")
		return
	}
	if err := writeJSON(conn, wsServerMessage{Type: "ready", UserID: userID}); err != nil {
		return
	}

	go drainReads(conn, cancel)
	err = relay(ctx, conn, pubsub.Channel())
	log.Info("websocket closed", slog.Any("reason", err))
}

func (h *WsHandler) authenticate(conn *websocket.Conn) (uint, error) {
	_ = conn.SetReadDeadline(time.Now().Add(wsAuthTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return 0, fmt.Errorf("%w: read: %w", errWsAuth, err)
	}
	var msg wsClientMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "auth" || msg.Token == "" {
		return 0, fmt.Errorf("%w: first message must be an auth message", errWsAuth)
	}
	claims, err := h.auth.ValidateToken(msg.Token, auth.TokenTypeAccess)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errWsAuth, err)
	}

	// 之后只靠 pong 续期。
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	return claims.UserID, nil
}

// drainReads 丢弃客户端帧，读出错即对端已断开。
func drainReads(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func relay(ctx context.Context, conn *websocket.Conn, messages <-chan *redis.Message) error {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				closeWs(conn, websocket.CloseGoingAway, "")
				return errors.New("notify channel closed")
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return fmt.Errorf("write notification: %w", err)
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return fmt.Errorf("write ping: %w", err)
			}
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(v)
}

func closeWs(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(wsWriteWait))
}
