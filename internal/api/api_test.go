package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/caffeineduck/pyplay/gallery"
	"github.com/caffeineduck/pyplay/playground"
	"github.com/caffeineduck/pyplay/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type runnerFunc func(ctx context.Context, req playground.RunRequest) error

func (f runnerFunc) Run(ctx context.Context, req playground.RunRequest) error { return f(ctx, req) }

// echoRunner prints the program text.
var echoRunner = runnerFunc(func(ctx context.Context, req playground.RunRequest) error {
	_, err := io.WriteString(req.Stdout, req.Code+"\n")
	return err
})

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Store == nil {
		opts.Store = store.NewMemory()
	}
	if opts.Limit == 0 {
		opts.Limit = 5 * time.Second
	}
	srv := New(opts)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *Server, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createSession(t *testing.T, srv *Server, req createSessionRequest) createSessionResponse {
	t.Helper()
	w := do(t, srv, http.MethodPost, "/v1/sessions", req)
	require.Contains(t, []int{http.StatusCreated, http.StatusOK}, w.Code, w.Body.String())
	return decode[createSessionResponse](t, w)
}

func getState(t *testing.T, srv *Server, id string) playground.State {
	t.Helper()
	w := do(t, srv, http.MethodGet, "/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[playground.State](t, w)
}

func outputText(st playground.State) string {
	var b strings.Builder
	for _, span := range st.Output {
		b.WriteString(span.Text)
	}
	return b.String()
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Options{})
	w := do(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestExamples(t *testing.T) {
	srv := newTestServer(t, Options{})

	w := do(t, srv, http.MethodGet, "/v1/examples", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Examples []exampleSummary `json:"examples"`
	}](t, w)
	require.Len(t, list.Examples, len(gallery.All()))
	require.Equal(t, "hello", list.Examples[0].Name)

	w = do(t, srv, http.MethodGet, "/v1/examples/turtle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ex := decode[gallery.Example](t, w)
	require.Contains(t, ex.Code, "import turtle")
	require.EqualValues(t, "graphics", ex.View)

	w = do(t, srv, http.MethodGet, "/v1/examples/nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateSession(t *testing.T) {
	srv := newTestServer(t, Options{Runner: echoRunner})

	resp := createSession(t, srv, createSessionRequest{})
	_, err := uuid.Parse(resp.SessionID)
	require.NoError(t, err)
	require.False(t, resp.Resumed)
	require.Equal(t, playground.StatusReady, resp.State.Status)
	require.Equal(t, "준비", resp.State.StatusText)
	require.Equal(t, "ko", resp.State.Language)

	st := getState(t, srv, resp.SessionID)
	require.Equal(t, 18, st.Layout.FontSize)
}

func TestCreateSessionLocale(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp := createSession(t, srv, createSessionRequest{Locale: "en"})
	require.Equal(t, "en", resp.State.Language)
	require.Equal(t, "Ready", resp.State.StatusText)

	w := do(t, srv, http.MethodPost, "/v1/sessions", nil, "Accept-Language", "en-US,en;q=0.9")
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "en", decode[createSessionResponse](t, w).State.Language)
}

func TestCreateSessionInvalidID(t *testing.T) {
	srv := newTestServer(t, Options{})
	w := do(t, srv, http.MethodPost, "/v1/sessions", createSessionRequest{ID: "not-a-uuid"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownSession(t *testing.T) {
	srv := newTestServer(t, Options{})
	w := do(t, srv, http.MethodGet, "/v1/sessions/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, srv, http.MethodPost, "/v1/sessions/"+uuid.NewString()+"/run", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestResumeRestoresSavedCode(t *testing.T) {
	srv := newTestServer(t, Options{})
	id := uuid.NewString()

	resp := createSession(t, srv, createSessionRequest{ID: id})
	require.Equal(t, id, resp.SessionID)

	w := do(t, srv, http.MethodPut, "/v1/sessions/"+id+"/code", putCodeRequest{Code: "print('kept')"})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, srv, http.MethodPost, "/v1/sessions/"+id+"/save", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	again := createSession(t, srv, createSessionRequest{ID: id})
	require.True(t, again.Resumed)

	w = do(t, srv, http.MethodDelete, "/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	fresh := createSession(t, srv, createSessionRequest{ID: id})
	require.False(t, fresh.Resumed)
	require.Equal(t, "print('kept')", fresh.State.Content)

	other := createSession(t, srv, createSessionRequest{})
	require.Empty(t, other.State.Content)
}

func TestRunCommand(t *testing.T) {
	srv := newTestServer(t, Options{Runner: echoRunner})
	id := createSession(t, srv, createSessionRequest{}).SessionID

	do(t, srv, http.MethodPut, "/v1/sessions/"+id+"/code", putCodeRequest{Code: "print('hi')"})
	w := do(t, srv, http.MethodPost, "/v1/sessions/"+id+"/run", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Eventually(t, func() bool {
		return getState(t, srv, id).Status == playground.StatusDone
	}, 2*time.Second, 10*time.Millisecond)

	st := getState(t, srv, id)
	require.False(t, st.Running)
	require.Contains(t, outputText(st), "print('hi')\n")
	require.Contains(t, outputText(st), "실행 완료")
}

func TestRunEmptySource(t *testing.T) {
	srv := newTestServer(t, Options{Runner: echoRunner})
	id := createSession(t, srv, createSessionRequest{}).SessionID

	w := do(t, srv, http.MethodPost, "/v1/sessions/"+id+"/run", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Equal(t, "실행할 코드가 없습니다", decode[commandResponse](t, w).State.Layout.Toast)
}

func TestInputAndStop(t *testing.T) {
	runner := runnerFunc(func(ctx context.Context, req playground.RunRequest) error {
		name, err := req.Input(ctx, "name? ")
		if err != nil {
			return err
		}
		io.WriteString(req.Stdout, "hello "+name+"\n")
		<-ctx.Done()
		return ctx.Err()
	})
	srv := newTestServer(t, Options{Runner: runner})
	id := createSession(t, srv, createSessionRequest{}).SessionID
	base := "/v1/sessions/" + id

	w := do(t, srv, http.MethodPost, base+"/input", Command{Value: "early"})
	require.Equal(t, http.StatusConflict, w.Code)

	do(t, srv, http.MethodPut, base+"/code", putCodeRequest{Code: "name = input()"})
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, base+"/run", nil).Code)

	require.Eventually(t, func() bool {
		return getState(t, srv, id).InputVisible
	}, 2*time.Second, 10*time.Millisecond)

	w = do(t, srv, http.MethodPost, base+"/input", Command{Value: "Bob"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Eventually(t, func() bool {
		return strings.Contains(outputText(getState(t, srv, id)), "hello Bob")
	}, 2*time.Second, 10*time.Millisecond)

	w = do(t, srv, http.MethodPost, base+"/run", nil)
	require.Equal(t, http.StatusConflict, w.Code)

	w = do(t, srv, http.MethodPost, base+"/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[commandResponse](t, w)
	require.Equal(t, map[string]any{"stopped": true}, resp.Result)
	require.Equal(t, playground.StatusStopped, resp.State.Status)
	require.False(t, resp.State.Running)

	w = do(t, srv, http.MethodPost, base+"/stop", nil)
	require.Equal(t, map[string]any{"stopped": false}, decode[commandResponse](t, w).Result)
}

func TestLoadNothingSaved(t *testing.T) {
	srv := newTestServer(t, Options{})
	id := createSession(t, srv, createSessionRequest{}).SessionID

	w := do(t, srv, http.MethodPost, "/v1/sessions/"+id+"/load", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "저장된 코드가 없습니다", decode[commandResponse](t, w).State.Layout.Toast)
}

func TestLayoutCommands(t *testing.T) {
	srv := newTestServer(t, Options{})
	id := createSession(t, srv, createSessionRequest{}).SessionID
	base := "/v1/sessions/" + id

	w := do(t, srv, http.MethodPost, base+"/font", Command{Step: 1})
	require.Equal(t, map[string]any{"fontSize": 19.0}, decode[commandResponse](t, w).Result)
	w = do(t, srv, http.MethodPost, base+"/font", Command{Size: 99})
	require.Equal(t, map[string]any{"fontSize": 32.0}, decode[commandResponse](t, w).Result)
	w = do(t, srv, http.MethodPost, base+"/font", Command{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, base+"/split", Command{Pos: 300, Extent: 1000})
	resp := decode[commandResponse](t, w)
	require.Equal(t, map[string]any{"editorShare": 30.0}, resp.Result)
	require.Equal(t, 70.0, resp.State.Layout.OutputShare)

	share := 95.0
	w = do(t, srv, http.MethodPost, base+"/split", Command{Share: &share})
	require.Equal(t, map[string]any{"editorShare": 80.0}, decode[commandResponse](t, w).Result)

	w = do(t, srv, http.MethodPost, base+"/commands", Command{Type: CmdViewport, Width: 600})
	require.Equal(t, map[string]any{"orientation": "vertical"}, decode[commandResponse](t, w).Result)

	w = do(t, srv, http.MethodPost, base+"/commands", Command{Type: CmdFullscreen})
	require.Equal(t, map[string]any{"fullscreen": "enter"}, decode[commandResponse](t, w).Result)

	w = do(t, srv, http.MethodPost, base+"/commands", Command{Type: CmdView, View: "sideways"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, base+"/commands", Command{Type: "dance"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExampleCommand(t *testing.T) {
	srv := newTestServer(t, Options{})
	id := createSession(t, srv, createSessionRequest{}).SessionID
	base := "/v1/sessions/" + id

	do(t, srv, http.MethodPost, base+"/commands", Command{Type: CmdMenu})
	w := do(t, srv, http.MethodPost, base+"/example", Command{Name: "turtle"})
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[commandResponse](t, w).State
	require.Contains(t, st.Content, "import turtle")
	require.EqualValues(t, "graphics", st.Layout.View)
	require.False(t, st.Layout.MenuOpen)

	w = do(t, srv, http.MethodPost, base+"/example", Command{Name: "missing"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestKeyCommand(t *testing.T) {
	srv := newTestServer(t, Options{})
	id := createSession(t, srv, createSessionRequest{}).SessionID
	base := "/v1/sessions/" + id

	do(t, srv, http.MethodPut, base+"/code", putCodeRequest{Code: "x = 1"})
	w := do(t, srv, http.MethodPost, base+"/key", Command{Key: &playground.Key{Name: "s", Ctrl: true}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, map[string]any{"action": "save"}, decode[commandResponse](t, w).Result)

	w = do(t, srv, http.MethodPost, base+"/key", Command{Key: &playground.Key{Name: "Escape"}})
	require.Equal(t, map[string]any{"action": ""}, decode[commandResponse](t, w).Result)
}

func TestDownload(t *testing.T) {
	srv := newTestServer(t, Options{})
	id := createSession(t, srv, createSessionRequest{}).SessionID

	do(t, srv, http.MethodPut, "/v1/sessions/"+id+"/code", putCodeRequest{Code: "print('내려받기')"})
	w := do(t, srv, http.MethodGet, "/v1/sessions/"+id+"/download", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `attachment; filename="code.py"`, w.Header().Get("Content-Disposition"))
	require.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/x-python"))
	require.Equal(t, "print('내려받기')", w.Body.String())
}

func TestReapIdleSessions(t *testing.T) {
	clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	srv := newTestServer(t, Options{SessionTTL: time.Minute, Clock: clk.Now})

	idle := createSession(t, srv, createSessionRequest{}).SessionID
	attached := createSession(t, srv, createSessionRequest{}).SessionID
	sess, ok := srv.sessions.get(attached)
	require.True(t, ok)
	sess.attach()

	clk.Advance(30 * time.Second)
	require.Zero(t, srv.sessions.reap())

	clk.Advance(45 * time.Second)
	require.Equal(t, 1, srv.sessions.reap())
	require.Equal(t, 1, srv.sessions.count())

	w := do(t, srv, http.MethodGet, "/v1/sessions/"+idle, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	sess.detach(clk.Now())
	clk.Advance(2 * time.Minute)
	require.Equal(t, 1, srv.sessions.reap())
}

func TestWebSocket(t *testing.T) {
	srv := newTestServer(t, Options{Runner: echoRunner})
	id := createSession(t, srv, createSessionRequest{}).SessionID

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/sessions/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var snap snapshotMessage
	require.NoError(t, conn.ReadJSON(&snap))
	require.Equal(t, MsgSnapshot, snap.Type)
	require.Equal(t, playground.StatusReady, snap.State.Status)

	require.NoError(t, conn.WriteJSON(Command{ID: "1", Type: CmdCode, Code: "print(1)"}))
	require.NoError(t, conn.WriteJSON(Command{ID: "2", Type: CmdRun}))

	var (
		replies []string
		output  strings.Builder
		content string
		done    bool
	)
	for !done || len(replies) < 2 {
		var raw map[string]json.RawMessage
		require.NoError(t, conn.ReadJSON(&raw))

		var typ string
		require.NoError(t, json.Unmarshal(raw["type"], &typ))
		switch typ {
		case MsgReply:
			var r replyMessage
			data, _ := json.Marshal(raw)
			require.NoError(t, json.Unmarshal(data, &r))
			require.Empty(t, r.Error)
			replies = append(replies, r.ID)
		case string(playground.EventContent):
			require.NoError(t, json.Unmarshal(raw["content"], &content))
		case string(playground.EventOutput):
			var span playground.Span
			require.NoError(t, json.Unmarshal(raw["span"], &span))
			output.WriteString(span.Text)
		case string(playground.EventStatus):
			var status playground.Status
			require.NoError(t, json.Unmarshal(raw["status"], &status))
			done = status == playground.StatusDone
		}
	}

	require.ElementsMatch(t, []string{"1", "2"}, replies)
	require.Equal(t, "print(1)", content)
	require.Contains(t, output.String(), "print(1)\n")
}

func TestWebSocketRejectsOrigin(t *testing.T) {
	srv := newTestServer(t, Options{AllowedOrigins: []string{"http://allowed.example"}})
	id := createSession(t, srv, createSessionRequest{}).SessionID

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/sessions/" + id + "/ws"
	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDispatchRequiresFields(t *testing.T) {
	srv := newTestServer(t, Options{})
	sess, _, err := srv.sessions.create("", "ko")
	require.NoError(t, err)

	for _, cmd := range []Command{
		{Type: CmdCursor},
		{Type: CmdKey},
		{Type: CmdSplit},
	} {
		_, err := dispatch(context.Background(), sess.ws, cmd)
		require.ErrorIs(t, err, ErrBadCommand, cmd.Type)
	}

	pos, err := dispatch(context.Background(), sess.ws, Command{Type: CmdCursor, Cursor: &playground.Cursor{Line: 5, Col: 5}})
	require.NoError(t, err)
	require.Equal(t, playground.Cursor{}, pos)
}
