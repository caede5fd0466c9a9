package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"ui-guide-go/internal/service"
	"ui-guide-go/pkg/log"
)

const statusWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// StatusHandler 提供远程服务状态，以及推送状态变化的 WebSocket。
type StatusHandler struct {
	monitor *service.StatusMonitor
}

// NewStatusHandler 创建一个新的 StatusHandler。
func NewStatusHandler(monitor *service.StatusMonitor) *StatusHandler {
	return &StatusHandler{monitor: monitor}
}

// Get 返回最近一次检查的结果。
func (h *StatusHandler) Get(c *gin.Context) {
	success(c, h.monitor.Current())
}

// Stream 升级为 WebSocket，先发送当前状态，之后每次检查完成都推送一次。
func (h *StatusHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := h.monitor.Subscribe()
	defer unsubscribe()

	// 客户端不发送业务消息，读循环只用于感知断开
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeStatus(conn, h.monitor.Current()); err != nil {
		return
	}
	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case st := <-updates:
			if err := writeStatus(conn, st); err != nil {
				log.Warnf("推送状态失败: %v", err)
				return
			}
		}
	}
}

func writeStatus(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(statusWriteTimeout))
	return conn.WriteJSON(v)
}
