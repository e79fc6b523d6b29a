package service

import (
	"errors"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
)

// ErrEmptyReplyPool indica que no hay respuestas de respaldo para elegir.
var ErrEmptyReplyPool = errors.New("reply pool is empty")

// RuleFallback es el nombre reportado cuando ninguna regla coincide.
const RuleFallback = "fallback"

var (
	greetingPattern = regexp.MustCompile(`\b(hi|hey|hello|sup)\b`)
	statusPattern   = regexp.MustCompile(`\b(how are you|how's it going)\b`)
)

var defaultFallbackReplies = []string{
	"I'm all ears—tell me more!",
	"That sounds interesting. What else is happening?",
	"I hear you. Want to go a little deeper?",
	"I'm here with you. What's on your mind next?",
}

type replyRule struct {
	name  string
	match func(lower string, priorTurns int) bool
	reply string
}

// El orden importa: la primera regla que coincide gana.
var replyRules = []replyRule{
	{
		name:  "greeting",
		match: func(l string, _ int) bool { return greetingPattern.MatchString(l) },
		reply: "Hey! 👋 How's your day shaping up so far?",
	},
	{
		name:  "status",
		match: func(l string, _ int) bool { return statusPattern.MatchString(l) },
		reply: "I'm feeling chatty and focused—ready for whatever you want to talk about. How are you doing?",
	},
	{
		name:  "farewell",
		match: func(l string, _ int) bool { return containsAny(l, "bye", "goodnight", "see you") },
		reply: "I'll be right here whenever you want to pick things up again. Sleep well or enjoy the rest of your day!",
	},
	{
		name:  "gratitude",
		match: func(l string, _ int) bool { return strings.Contains(l, "thank") },
		reply: "Anytime. Happy to hang out and keep the conversation going.",
	},
	{
		// Se evalúa después de las palabras clave y antes de las de ánimo.
		name:  "early_nudge",
		match: func(_ string, priorTurns int) bool { return priorTurns <= 1 },
		reply: "Tell me what's been on your mind lately.",
	},
	{
		name:  "empathy",
		match: func(l string, _ int) bool { return containsAny(l, "tired", "exhausted") },
		reply: "Sounds like you've been pushing hard. Want to unpack what's wearing you out or brainstorm ways to recharge?",
	},
	{
		name:  "enthusiasm",
		match: func(l string, _ int) bool { return containsAny(l, "excited", "happy") },
		reply: "I love that energy. What sparked the excitement?",
	},
}

// ReplySelector elige una respuesta enlatada a partir del prompt y del largo de la conversación.
// Es seguro para uso concurrente: sólo lee datos inmutables salvo la fuente aleatoria.
type ReplySelector struct {
	fallback []string

	mu  sync.Mutex
	rng *rand.Rand
}

// ReplySelectorOption ajusta un ReplySelector en construcción.
type ReplySelectorOption func(*ReplySelector)

// WithRand fija la fuente aleatoria usada para el respaldo (útil en tests).
func WithRand(rng *rand.Rand) ReplySelectorOption {
	return func(s *ReplySelector) {
		s.rng = rng
	}
}

// NewReplySelector crea un selector con el pool de respaldo dado.
func NewReplySelector(fallback []string, opts ...ReplySelectorOption) (*ReplySelector, error) {
	if len(fallback) == 0 {
		return nil, ErrEmptyReplyPool
	}
	s := &ReplySelector{fallback: append([]string(nil), fallback...)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultReplySelector usa el pool de respaldo fijo del paquete.
func DefaultReplySelector(opts ...ReplySelectorOption) *ReplySelector {
	s, err := NewReplySelector(defaultFallbackReplies, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Select devuelve la respuesta para un prompt ya recortado y no vacío.
func (s *ReplySelector) Select(prompt string, priorTurns int) string {
	reply, _ := s.SelectWithRule(prompt, priorTurns)
	return reply
}

// SelectWithRule es como Select pero además informa qué regla se aplicó.
func (s *ReplySelector) SelectWithRule(prompt string, priorTurns int) (reply string, rule string) {
	lower := strings.ToLower(prompt)
	for _, r := range replyRules {
		if r.match(lower, priorTurns) {
			return r.reply, r.name
		}
	}
	return s.pick(), RuleFallback
}

// FallbackReplies devuelve una copia del pool de respaldo.
func (s *ReplySelector) FallbackReplies() []string {
	return append([]string(nil), s.fallback...)
}

// Rules lista los nombres de las reglas en orden de evaluación, terminando en el respaldo.
func Rules() []string {
	names := make([]string, 0, len(replyRules)+1)
	for _, r := range replyRules {
		names = append(names, r.name)
	}
	return append(names, RuleFallback)
}

func (s *ReplySelector) pick() string {
	if s == nil || len(s.fallback) == 0 {
		panic(ErrEmptyReplyPool)
	}
	if s.rng == nil {
		return s.fallback[rand.IntN(len(s.fallback))]
	}
	s.mu.Lock()
	idx := s.rng.IntN(len(s.fallback))
	s.mu.Unlock()
	return s.fallback[idx]
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
