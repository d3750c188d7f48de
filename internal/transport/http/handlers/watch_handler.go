package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/csvflow/backend/internal/core/ports"
	"github.com/csvflow/backend/internal/infrastructure/logger"
)

// WatchHandler streams task status snapshots over a websocket until the
// task reaches a terminal state, as a push alternative to HTTP polling.
type WatchHandler struct {
	ledger ports.LedgerService
	auth   ports.AuthService
	logger *logger.Logger
}

func NewWatchHandler(ledger ports.LedgerService, auth ports.AuthService, logger *logger.Logger) *WatchHandler {
	return &WatchHandler{ledger: ledger, auth: auth, logger: logger}
}

type watchMessage struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (h *WatchHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	taskID := c.Params("id")
	userID, err := h.auth.VerifyAccess(c.Query("token"))
	if err != nil {
		h.logger.Warnw("task_watch_unauthorized", "task_id", taskID)
		c.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
		return
	}

	h.logger.Infow("task_watch_start", "task_id", taskID, "user_id", userID)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		task, err := h.ledger.Get(context.Background(), taskID, userID)
		if err != nil {
			c.WriteMessage(websocket.TextMessage, []byte(`{"error":"task not found"}`))
			return
		}

		msg, _ := json.Marshal(watchMessage{
			TaskID: task.TaskID,
			Status: string(task.Status),
			Error:  task.ErrorMessage,
		})
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Warnw("task_watch_write_failed", "task_id", taskID, "error", err)
			return
		}

		if task.Status.Terminal() {
			h.logger.Infow("task_watch_done", "task_id", taskID, "status", task.Status)
			return
		}
		<-ticker.C
	}
}
