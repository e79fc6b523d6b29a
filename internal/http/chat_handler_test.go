package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"talk-to-me/internal/domain"
	"talk-to-me/internal/service"
)

type recordingSelector struct {
	calls      int
	lastPrompt string
	lastTurns  int
	reply      string
}

func (s *recordingSelector) SelectWithRule(prompt string, priorTurns int) (string, string) {
	s.calls++
	s.lastPrompt = prompt
	s.lastTurns = priorTurns
	return s.reply, "fake"
}

func setupChatRouter(sel ReplySelector) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewChatHandler(zap.NewNop(), sel)
	return NewRouter(zap.NewNop(), h)
}

func doChat(t *testing.T, r http.Handler, body string) (*httptest.ResponseRecorder, domain.ChatReply) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp domain.ChatReply
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w, resp
}

func TestPostChat_EmptyOrMissingMessage(t *testing.T) {
	cases := map[string]string{
		"empty object":     `{}`,
		"whitespace only":  `{"message": "  "}`,
		"null message":     `{"message": null, "history": []}`,
		"malformed json":   `{"message": "hi"`,
		"empty body":       ``,
		"numeric message":  `{"message": 42, "history": []}`,
		"trailing garbage": `{"message": "hey"} junk`,
		"two objects":      `{"message": "hey"}{"message": "hey"}`,
		"top-level array":  `[{"message": "hey"}]`,
		"null body":        `null`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			sel := &recordingSelector{reply: "unused"}
			w, resp := doChat(t, setupChatRouter(sel), body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if resp.Reply != domain.ClarificationReply {
				t.Fatalf("expected clarification reply, got %q", resp.Reply)
			}
			if sel.calls != 0 {
				t.Fatalf("selector must not be invoked, got %d calls", sel.calls)
			}
		})
	}
}

func TestPostChat_TrimsPromptAndCountsHistory(t *testing.T) {
	sel := &recordingSelector{reply: "ok"}
	body := `{"message": "  hola  ", "history": [{"role":"assistant","text":"hey"},{"role":"user","text":"yo"},{"role":"assistant","text":"?"}]}`

	w, resp := doChat(t, setupChatRouter(sel), body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp.Reply != "ok" {
		t.Fatalf("expected reply from selector, got %q", resp.Reply)
	}
	if sel.lastPrompt != "hola" {
		t.Fatalf("expected trimmed prompt, got %q", sel.lastPrompt)
	}
	if sel.lastTurns != 3 {
		t.Fatalf("expected 3 prior turns, got %d", sel.lastTurns)
	}
}

func TestPostChat_MissingHistoryMeansZeroTurns(t *testing.T) {
	sel := &recordingSelector{reply: "ok"}
	w, _ := doChat(t, setupChatRouter(sel), `{"message": "something"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if sel.lastTurns != 0 {
		t.Fatalf("expected 0 prior turns, got %d", sel.lastTurns)
	}
}

func TestPostChat_HistoryLengthIgnoresEntryShape(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		turns int
	}{
		{"array of numbers", `{"message": "hey", "history": [1, 2, 3]}`, 3},
		{"entry with wrong text type", `{"message": "hey", "history": [{"role": "user", "text": 5}]}`, 1},
		{"mixed entries", `{"message": "hey", "history": [null, "x", {"role": "assistant", "text": "hi"}, []]}`, 4},
		{"history not an array", `{"message": "hey", "history": "nope"}`, 0},
		{"history null", `{"message": "hey", "history": null}`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sel := &recordingSelector{reply: "ok"}
			w, resp := doChat(t, setupChatRouter(sel), tc.body)

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if resp.Reply != "ok" {
				t.Fatalf("expected reply from selector, got %q", resp.Reply)
			}
			if sel.lastPrompt != "hey" {
				t.Fatalf("expected prompt hey, got %q", sel.lastPrompt)
			}
			if sel.lastTurns != tc.turns {
				t.Fatalf("expected %d prior turns, got %d", tc.turns, sel.lastTurns)
			}
		})
	}
}

func TestRouter_LogsChosenRule(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := NewRouter(zap.New(core), NewChatHandler(zap.NewNop(), service.DefaultReplySelector()))

	doChat(t, r, `{"message": "thanks!", "history": []}`)
	doChat(t, r, `{}`)

	entries := logs.FilterMessage("chat request").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 request logs, got %d", len(entries))
	}
	first := entries[0].ContextMap()
	if first["rule"] != "gratitude" {
		t.Fatalf("expected rule gratitude, got %v", first["rule"])
	}
	if first["status"] != int64(http.StatusOK) {
		t.Fatalf("expected status 200, got %v", first["status"])
	}
	if _, ok := entries[1].ContextMap()["rule"]; ok {
		t.Fatalf("expected no rule for a rejected request")
	}
}

func TestPostChat_GreetingWithRealSelector(t *testing.T) {
	r := setupChatRouter(service.DefaultReplySelector())

	w, resp := doChat(t, r, `{"message": "hey", "history": []}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp.Reply != "Hey! 👋 How's your day shaping up so far?" {
		t.Fatalf("expected greeting reply, got %q", resp.Reply)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected json content type, got %q", ct)
	}
}

func TestPostChat_OnlyPostIsRouted(t *testing.T) {
	r := setupChatRouter(&recordingSelector{reply: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for GET, got %d", w.Code)
	}
}
