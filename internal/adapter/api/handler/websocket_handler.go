package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"laporwarga/internal/domain/entity"
	ws "laporwarga/internal/infrastructure/websocket"
	"laporwarga/internal/usecase"
	"laporwarga/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	manager          *ws.Manager
	authClient       *auth.Client
	complaintUseCase *usecase.ComplaintUseCase
}

func NewWebSocketHandler(manager *ws.Manager, authClient *auth.Client, complaintUseCase *usecase.ComplaintUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		manager:          manager,
		authClient:       authClient,
		complaintUseCase: complaintUseCase,
	}
}

// ComplaintFeed streams full complaint-list snapshots to the client on
// every store change. Scope defaults to the caller's own complaints;
// ?all=true requests the privileged all-complaints feed.
func (h *WebSocketHandler) ComplaintFeed(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token is required")
	}

	decoded, err := h.authClient.VerifyIDToken(c.Request().Context(), token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	}
	uid := decoded.UID

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("Websocket upgrade failed: %v", err)
		return err
	}

	client := &ws.Client{
		ID:     uuid.New().String(),
		UserID: uid,
		Conn:   conn,
		Send:   make(chan []byte, 16),
	}

	push := func(complaints []*entity.Complaint) {
		payload, err := json.Marshal(map[string]interface{}{
			"type":  "complaints",
			"items": complaints,
		})
		if err != nil {
			logger.Error("Failed to marshal complaint snapshot: %v", err)
			return
		}
		h.manager.Push(client.ID, payload)
	}

	// Register before the listener starts so the initial snapshot is not
	// dropped. The listener must outlive the upgraded request, so it runs
	// on a background context; the stop function registered on the client
	// ends it when the connection goes away.
	h.manager.Register <- client

	var stop func()
	if c.QueryParam("all") == "true" {
		stop, err = h.complaintUseCase.ListenAll(context.Background(), uid, push)
	} else {
		stop, err = h.complaintUseCase.ListenByUser(context.Background(), uid, push)
	}
	if err != nil {
		h.manager.Unregister <- client
		conn.Close()
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}
	client.SetStop(stop)

	go client.WritePump()
	go client.ReadPump(h.manager)

	return nil
}
