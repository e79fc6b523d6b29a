package domain

import (
	"time"

	"github.com/google/uuid"
)

// Textos fijos compartidos entre el servidor y el cliente.
const (
	ClarificationReply = "I didn't quite catch that. Could you say it again?"
	WelcomeText        = "Hey there! I'm here and ready to chat whenever you are."
	SnagReply          = "I hit a snag replying just now. Mind trying again?"
)

// Role identifica quién escribió un mensaje: user o assistant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid indica si el rol pertenece al conjunto permitido.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message es un turno de la conversación visto por el cliente. No se modifica tras crearse.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage construye un mensaje con ID y timestamp nuevos.
func NewMessage(role Role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// HistoryEntry es la forma en el wire de un turno previo.
type HistoryEntry struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// ToHistory reduce los mensajes a su forma de historial.
func ToHistory(msgs []Message) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, HistoryEntry{Role: m.Role, Text: m.Text})
	}
	return out
}

// ChatRequest es el payload de POST /api/chat. Ambos campos son opcionales.
type ChatRequest struct {
	Message *string        `json:"message,omitempty"`
	History []HistoryEntry `json:"history,omitempty"`
}

// ChatReply es la respuesta de POST /api/chat, tanto en 200 como en 400.
type ChatReply struct {
	Reply string `json:"reply"`
}
