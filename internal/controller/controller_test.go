package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbeisheim/chess-engine/internal/engine"
	"github.com/benbeisheim/chess-engine/internal/model"
	"github.com/benbeisheim/chess-engine/internal/openings"
	"github.com/benbeisheim/chess-engine/internal/service"
	"github.com/benbeisheim/chess-engine/internal/ws"
	"github.com/gofiber/fiber/v2"
)

type testState struct {
	ID      string `json:"id"`
	FEN     string `json:"fen"`
	CanUndo bool   `json:"canUndo"`
	CanRedo bool   `json:"canRedo"`
	Result  string `json:"result"`
}

func newTestApp(t *testing.T) (*fiber.App, *service.GameService) {
	t.Helper()
	eng := engine.New(engine.Options{MaxDepth: 2, QuiescenceDepth: 2, Book: engine.DefaultBook()}, nil)
	queue := service.NewSearchQueue(engine.NewAdvisor(eng, nil, nil), 1, nil)
	t.Cleanup(queue.Close)
	gs := service.NewGameService(service.NewSessionManager(nil), queue, openings.NewLabeler(), time.Second, nil)

	app := fiber.New()
	Register(app, NewGameController(gs, 5*time.Second, nil), NewWebSocketController(gs, 5*time.Second, nil), nil)
	return app, gs
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, out
}

func decodeState(t *testing.T, body []byte) testState {
	t.Helper()
	var st testState
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("decode state %s: %v", body, err)
	}
	return st
}

func createSession(t *testing.T, app *fiber.App) string {
	t.Helper()
	code, body := do(t, app, http.MethodPost, "/api/session", "")
	if code != fiber.StatusCreated {
		t.Fatalf("create: status %d: %s", code, body)
	}
	return decodeState(t, body).ID
}

func TestSessionLifecycle(t *testing.T) {
	app, _ := newTestApp(t)
	id := createSession(t, app)
	base := "/api/session/" + id

	code, body := do(t, app, http.MethodGet, base+"/moves/e2", "")
	if code != fiber.StatusOK {
		t.Fatalf("moves: status %d: %s", code, body)
	}
	var moves struct {
		Destinations []string `json:"destinations"`
	}
	if err := json.Unmarshal(body, &moves); err != nil {
		t.Fatalf("decode moves: %v", err)
	}
	if strings.Join(moves.Destinations, ",") != "e3,e4" && strings.Join(moves.Destinations, ",") != "e4,e3" {
		t.Fatalf("unexpected destinations %v", moves.Destinations)
	}

	code, body = do(t, app, http.MethodPost, base+"/move", `{"move":"e2e4"}`)
	if code != fiber.StatusOK {
		t.Fatalf("move: status %d: %s", code, body)
	}
	st := decodeState(t, body)
	if !st.CanUndo || !strings.HasPrefix(st.FEN, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b") {
		t.Fatalf("unexpected state after e2e4: %+v", st)
	}

	code, body = do(t, app, http.MethodPost, base+"/move", `{"from":"e7","to":"e5"}`)
	if code != fiber.StatusOK {
		t.Fatalf("square move: status %d: %s", code, body)
	}

	code, body = do(t, app, http.MethodPost, base+"/undo", "")
	if code != fiber.StatusOK {
		t.Fatalf("undo: status %d: %s", code, body)
	}
	if st := decodeState(t, body); !st.CanRedo {
		t.Fatalf("expected redo after undo: %+v", st)
	}

	code, _ = do(t, app, http.MethodPost, base+"/reset", "")
	if code != fiber.StatusOK {
		t.Fatalf("reset: status %d", code)
	}
	code, _ = do(t, app, http.MethodPost, base+"/undo", "")
	if code != fiber.StatusConflict {
		t.Fatalf("undo on fresh game: status %d, want 409", code)
	}

	code, _ = do(t, app, http.MethodDelete, base, "")
	if code != fiber.StatusNoContent {
		t.Fatalf("delete: status %d", code)
	}
	code, _ = do(t, app, http.MethodGet, base, "")
	if code != fiber.StatusNotFound {
		t.Fatalf("get after delete: status %d, want 404", code)
	}
}

func TestCreateSessionFromFEN(t *testing.T) {
	app, _ := newTestApp(t)
	fen := "4k3/8/8/8/8/8/8/4K2R w K - 0 1"
	code, body := do(t, app, http.MethodPost, "/api/session", fmt.Sprintf(`{"fen":%q}`, fen))
	if code != fiber.StatusCreated {
		t.Fatalf("status %d: %s", code, body)
	}
	if st := decodeState(t, body); st.FEN != fen {
		t.Fatalf("fen = %q, want %q", st.FEN, fen)
	}

	code, _ = do(t, app, http.MethodPost, "/api/session", `{"fen":"not a fen"}`)
	if code != fiber.StatusUnprocessableEntity {
		t.Fatalf("bad fen: status %d, want 422", code)
	}
}

func TestRequestErrors(t *testing.T) {
	app, _ := newTestApp(t)
	base := "/api/session/" + createSession(t, app)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"unknown session", http.MethodGet, "/api/session/nope", "", fiber.StatusNotFound},
		{"illegal move", http.MethodPost, base + "/move", `{"move":"e2e5"}`, fiber.StatusUnprocessableEntity},
		{"wrong side", http.MethodPost, base + "/move", `{"move":"e7e5"}`, fiber.StatusUnprocessableEntity},
		{"bad notation", http.MethodPost, base + "/move", `{"move":"zz"}`, fiber.StatusUnprocessableEntity},
		{"malformed body", http.MethodPost, base + "/move", `{"move":`, fiber.StatusBadRequest},
		{"bad square", http.MethodGet, base + "/moves/k9", "", fiber.StatusUnprocessableEntity},
		{"nothing to redo", http.MethodPost, base + "/redo", "", fiber.StatusConflict},
		{"unknown piece", http.MethodPost, base + "/place", `{"square":"e4","piece":"x"}`, fiber.StatusUnprocessableEntity},
		{"bad side", http.MethodPost, base + "/side", `{"color":"green"}`, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, app, tt.method, tt.target, tt.body)
			if code != tt.want {
				t.Fatalf("status %d, want %d: %s", code, tt.want, body)
			}
		})
	}
}

func TestSetupRoutes(t *testing.T) {
	app, _ := newTestApp(t)
	base := "/api/session/" + createSession(t, app)

	steps := []struct {
		target string
		body   string
	}{
		{base + "/clear", ""},
		{base + "/place", `{"square":"e1","piece":"K"}`},
		{base + "/place", `{"square":"e8","piece":"k"}`},
		{base + "/place", `{"square":"d4","piece":"Q"}`},
		{base + "/remove", `{"square":"d4"}`},
		{base + "/side", `{"color":"black"}`},
	}
	var body []byte
	for _, s := range steps {
		var code int
		code, body = do(t, app, http.MethodPost, s.target, s.body)
		if code != fiber.StatusOK {
			t.Fatalf("%s: status %d: %s", s.target, code, body)
		}
	}
	if st := decodeState(t, body); st.FEN != "4k3/8/8/8/8/8/8/4K3 b - - 0 1" {
		t.Fatalf("fen = %q", st.FEN)
	}

	code, body := do(t, app, http.MethodPost, base+"/fen", `{"fen":"7k/8/8/8/8/8/8/7K w - - 0 1"}`)
	if code != fiber.StatusOK {
		t.Fatalf("fen: status %d: %s", code, body)
	}
}

func TestSuggestRoute(t *testing.T) {
	app, _ := newTestApp(t)
	base := "/api/session/" + createSession(t, app)

	code, body := do(t, app, http.MethodPost, base+"/ai", `{"budgetMs":500,"apply":true}`)
	if code != fiber.StatusOK {
		t.Fatalf("ai: status %d: %s", code, body)
	}
	var out struct {
		Move       string             `json:"move"`
		Suggestion service.Suggestion `json:"suggestion"`
		State      testState          `json:"state"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Move != "e2e4" || out.Suggestion.Result.Source != engine.SourceBook {
		t.Fatalf("expected the book move, got %s from %s", out.Move, out.Suggestion.Result.Source)
	}
	if out.Suggestion.Applied == nil || !out.State.CanUndo {
		t.Fatalf("expected the move to be applied: %+v", out)
	}

	// Fool's mate leaves White without moves.
	do(t, app, http.MethodPost, base+"/reset", "")
	for _, m := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		if code, body := do(t, app, http.MethodPost, base+"/move", fmt.Sprintf(`{"move":%q}`, m)); code != fiber.StatusOK {
			t.Fatalf("move %s: status %d: %s", m, code, body)
		}
	}
	code, _ = do(t, app, http.MethodPost, base+"/ai", "")
	if code != fiber.StatusConflict {
		t.Fatalf("ai on finished game: status %d, want 409", code)
	}
}

func TestObserveRoute(t *testing.T) {
	app, _ := newTestApp(t)
	base := "/api/session/" + createSession(t, app)

	occ := model.NewPosition().Occupancy()
	occ[6][4] = false // e2
	occ[4][4] = true  // e4
	payload, err := json.Marshal(service.Observation{Occupancy: &occ})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	code, body := do(t, app, http.MethodPost, base+"/observe", string(payload))
	if code != fiber.StatusOK {
		t.Fatalf("observe: status %d: %s", code, body)
	}
	if st := decodeState(t, body); !strings.Contains(st.FEN, "4P3") {
		t.Fatalf("expected pawn on e4, fen %q", st.FEN)
	}

	code, _ = do(t, app, http.MethodPost, base+"/observe", `{}`)
	if code != fiber.StatusUnprocessableEntity {
		t.Fatalf("empty observation: status %d, want 422", code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrSessionNotFound, fiber.StatusNotFound},
		{fmt.Errorf("wrapped: %w", model.ErrIllegalMove), fiber.StatusUnprocessableEntity},
		{&model.InvalidPositionError{Rule: model.RuleKingCount}, fiber.StatusUnprocessableEntity},
		{service.ErrSearchPending, fiber.StatusConflict},
		{engine.ErrNoLegalMoves, fiber.StatusConflict},
		{service.ErrQueueClosed, fiber.StatusServiceUnavailable},
		{context.DeadlineExceeded, fiber.StatusRequestTimeout},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestBudgetCap(t *testing.T) {
	gc := NewGameController(nil, time.Second, nil)
	if got := gc.budget(5000); got != time.Second {
		t.Fatalf("budget(5000) = %v, want 1s", got)
	}
	if got := gc.budget(-3); got != 0 {
		t.Fatalf("budget(-3) = %v, want 0", got)
	}
	if got := gc.budget(250); got != 250*time.Millisecond {
		t.Fatalf("budget(250) = %v", got)
	}
}

func TestWebSocketDispatch(t *testing.T) {
	_, gs := newTestApp(t)
	st, err := gs.CreateSession("")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	wsc := NewWebSocketController(gs, time.Second, nil)
	ctx := context.Background()

	msg, err := ws.NewMessage(ws.MessageTypeMove, ws.MovePayload{Move: "e2e4"})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if reply, err := wsc.dispatch(ctx, st.ID, msg); err != nil || reply != nil {
		t.Fatalf("move: reply %v, err %v", reply, err)
	}
	if _, err := wsc.dispatch(ctx, st.ID, ws.Message{Type: ws.MessageTypeUndo}); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if _, err := wsc.dispatch(ctx, st.ID, ws.Message{Type: ws.MessageTypeRedo}); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if _, err := wsc.dispatch(ctx, st.ID, ws.Message{Type: ws.MessageTypeRedo}); !errors.Is(err, model.ErrNothingToRedo) {
		t.Fatalf("second redo: expected ErrNothingToRedo, got %v", err)
	}

	reply, err := wsc.dispatch(ctx, st.ID, ws.Message{Type: ws.MessageTypeAI})
	if err != nil {
		t.Fatalf("ai: %v", err)
	}
	if reply == nil || reply.Type != ws.MessageTypeSuggestion {
		t.Fatalf("expected a suggestion reply, got %+v", reply)
	}
	var sug service.Suggestion
	if err := json.Unmarshal(reply.Payload, &sug); err != nil {
		t.Fatalf("decode suggestion: %v", err)
	}
	if sug.Result.Move.String() != "e7e5" || sug.Applied != nil {
		t.Fatalf("expected the unapplied book reply e7e5, got %+v", sug)
	}

	if _, err := wsc.dispatch(ctx, st.ID, ws.Message{Type: "castle"}); err == nil {
		t.Fatal("expected an error for an unknown message type")
	}
}
