package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"talk-to-me/internal/domain"
)

// ctxKeyReplyRule guarda en el gin.Context la regla que eligió la respuesta.
const ctxKeyReplyRule = "reply_rule"

// ReplySelector abstrae el motor de reglas que elige la respuesta.
type ReplySelector interface {
	SelectWithRule(prompt string, priorTurns int) (reply string, rule string)
}

// ChatHandler atiende POST /api/chat. No guarda estado entre requests.
type ChatHandler struct {
	logger   *zap.Logger
	selector ReplySelector
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(logger *zap.Logger, selector ReplySelector) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		logger:   logger,
		selector: selector,
	}
}

// PostChat maneja POST /api/chat.
func (h *ChatHandler) PostChat(c *gin.Context) {
	prompt, priorTurns := h.decodeChatRequest(c)
	if prompt == "" {
		c.JSON(http.StatusBadRequest, domain.ChatReply{Reply: domain.ClarificationReply})
		return
	}

	reply, rule := h.selector.SelectWithRule(prompt, priorTurns)
	c.Set(ctxKeyReplyRule, rule)

	c.JSON(http.StatusOK, domain.ChatReply{Reply: reply})
}

// decodeChatRequest devuelve el prompt recortado y la cantidad de turnos previos.
// Un body que no es un objeto JSON válido cuenta como {}. Cada campo se lee por
// separado: un message que no es string queda vacío, un history que no es array cuenta 0.
func (h *ChatHandler) decodeChatRequest(c *gin.Context) (string, int) {
	raw, err := c.GetRawData()
	if err != nil {
		h.logger.Debug("read chat request body", zap.Error(err))
		return "", 0
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		h.logger.Debug("unparseable chat request, treating as empty", zap.Error(err))
		return "", 0
	}

	var message string
	if v, ok := fields["message"]; ok {
		if err := json.Unmarshal(v, &message); err != nil {
			h.logger.Debug("chat message is not a string", zap.Error(err))
			message = ""
		}
	}

	var history []json.RawMessage
	if v, ok := fields["history"]; ok {
		if err := json.Unmarshal(v, &history); err != nil {
			h.logger.Debug("chat history is not an array", zap.Error(err))
			history = nil
		}
	}

	return strings.TrimSpace(message), len(history)
}
