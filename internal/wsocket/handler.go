package wsocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"sensus_chatbot_go_backend/internal/models"
	"sensus_chatbot_go_backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Handler serves the realtime chat endpoint. It drives the same metered
// consumption path as the REST /api/chat route, so every answered question
// costs one message here too.
type Handler struct {
	chat     *services.ChatService
	upgrader websocket.Upgrader
}

type Message struct {
	Type             string `json:"type"`
	Content          string `json:"content"`
	RemainingBalance *int   `json:"remaining_balance,omitempty"`
}

func NewHandler(chat *services.ChatService, upgrader websocket.Upgrader) *Handler {
	return &Handler{
		chat:     chat,
		upgrader: upgrader,
	}
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request, user *models.User) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("Websocket read failed")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.writeError(conn, "Invalid message format")
			continue
		}

		switch msg.Type {
		case "question":
			h.handleQuestion(ctx, conn, user, msg.Content)
		case "ping":
			if err := conn.WriteJSON(Message{Type: "pong"}); err != nil {
				return
			}
		default:
			h.writeError(conn, "Unknown message type: "+msg.Type)
		}
	}
}

func (h *Handler) handleQuestion(ctx context.Context, conn *websocket.Conn, user *models.User, question string) {
	if question == "" {
		h.writeError(conn, "Question is required")
		return
	}

	result, err := h.chat.Consume(ctx, user.ID, question)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientBalance) {
			if err := conn.WriteJSON(Message{
				Type:    "insufficient_balance",
				Content: "Você não possui saldo de mensagens. Adquira um pacote para continuar usando o chatbot.",
			}); err != nil {
				log.Warn().Err(err).Msg("Error sending balance notice")
			}
			return
		}
		log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Chat consumption failed")
		h.writeError(conn, "Failed to process question")
		return
	}

	msgType := "answer"
	if result.Degraded {
		msgType = "answer_degraded"
	}
	if err := conn.WriteJSON(Message{
		Type:             msgType,
		Content:          result.Answer,
		RemainingBalance: &result.RemainingBalance,
	}); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).
			Int("balance", result.RemainingBalance).
			Msg("Error sending answer")
	}
}

func (h *Handler) writeError(conn *websocket.Conn, content string) {
	if err := conn.WriteJSON(Message{Type: "error", Content: content}); err != nil {
		log.Warn().Err(err).Msg("Error sending websocket error frame")
	}
}
