package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"talk-to-me/internal/domain"
)

var (
	// ErrEmptyPrompt indica que el texto quedó vacío tras recortarlo.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrBusy indica que ya hay una respuesta en curso.
	ErrBusy        = errors.New("a reply is already in progress")
)

// Conversation mantiene la lista de mensajes del lado del cliente.
// Un segundo Send mientras hay uno en curso no se encola: se rechaza con ErrBusy.
type Conversation struct {
	replier Replier
	logger  *zap.Logger

	mu       sync.Mutex
	messages []domain.Message
	thinking bool
}

// NewConversation arranca una conversación con el saludo del asistente.
func NewConversation(replier Replier, logger *zap.Logger) *Conversation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Conversation{
		replier:  replier,
		logger:   logger,
		messages: []domain.Message{domain.NewMessage(domain.RoleAssistant, domain.WelcomeText)},
	}
}

// Send agrega el mensaje del usuario, pide la respuesta y la agrega.
// Ante cualquier fallo del servidor agrega domain.SnagReply en lugar de reintentar.
func (c *Conversation) Send(ctx context.Context, text string) (domain.Message, error) {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		return domain.Message{}, ErrEmptyPrompt
	}

	c.mu.Lock()
	if c.thinking {
		c.mu.Unlock()
		return domain.Message{}, ErrBusy
	}
	history := domain.ToHistory(c.messages)
	c.messages = append(c.messages, domain.NewMessage(domain.RoleUser, prompt))
	c.thinking = true
	c.mu.Unlock()

	reply, err := c.replier.Reply(ctx, prompt, history)
	if err != nil {
		c.logger.Warn("chat reply failed", zap.Error(err))
		reply = domain.SnagReply
	}
	assistant := domain.NewMessage(domain.RoleAssistant, reply)

	c.mu.Lock()
	c.messages = append(c.messages, assistant)
	c.thinking = false
	c.mu.Unlock()

	return assistant, nil
}

// Messages devuelve una copia de la lista actual.
func (c *Conversation) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Message(nil), c.messages...)
}

// Thinking indica si hay un Send esperando respuesta.
func (c *Conversation) Thinking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.thinking
}
