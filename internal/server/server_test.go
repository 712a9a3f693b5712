package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/avgui-demo/internal/config"
	"github.com/vyrodovalexey/avgui-demo/internal/model"
	"github.com/vyrodovalexey/avgui-demo/internal/store"
	"github.com/vyrodovalexey/avgui-demo/internal/tmdb"
)

// stubMovies implements handler.MovieSource for server tests.
type stubMovies struct{}

func (stubMovies) Movies(_ context.Context, _ tmdb.Category, _ string) ([]model.TMDBMovieResult, error) {
	return []model.TMDBMovieResult{{ID: 550, Title: "Fight Club"}}, nil
}

func (stubMovies) Movie(_ context.Context, movieID string) (*model.TMDBMovie, error) {
	return &model.TMDBMovie{Title: "Fight Club", Homepage: "https://example.com/" + movieID}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		ServerPort:      8080,
		LogLevel:        "info",
		ShutdownTimeout: 30 * time.Second,
		MetricsEnabled:  true,
		AllowedOrigins:  []string{"*"},
		DevToolsURL:     "http://127.0.0.1:20480",
		TodoStartID:     1000,
	}
}

func newTestServer(cfg *config.Config) *Server {
	return New(cfg, zap.NewNop(), store.NewMemoryStore(), stubMovies{})
}

func serve(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestNew(t *testing.T) {
	// Act
	server := newTestServer(testConfig())

	// Assert
	if server == nil {
		t.Fatal("New() returned nil")
	}
	if server.router == nil {
		t.Error("router should not be nil")
	}
	if server.httpServer == nil {
		t.Error("httpServer should not be nil")
	}
	if server.frames == nil {
		t.Error("frames should not be nil")
	}
	if server.Router() != server.router {
		t.Error("Router() should return the server's router")
	}
}

func TestNew_Metrics(t *testing.T) {
	tests := []struct {
		name       string
		enabled    bool
		wantStatus int
	}{
		{name: "enabled", enabled: true, wantStatus: http.StatusOK},
		{name: "disabled", enabled: false, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := testConfig()
			cfg.MetricsEnabled = tt.enabled
			server := newTestServer(cfg)

			// Act
			rr := serve(server, http.MethodGet, "/metrics", "")

			// Assert
			if rr.Code != tt.wantStatus {
				t.Errorf("Metrics endpoint status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_Routes(t *testing.T) {
	tests := []struct {
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/ready", "", http.StatusOK},
		{http.MethodGet, "/todolistcontroller/items?name=all", "", http.StatusOK},
		{http.MethodPost, "/todolistcontroller/items", `{"name":"add","text":"x"}`, http.StatusOK},
		{http.MethodGet, "/todolistcontroller/toggleactive?id=1000&completed=1", "", http.StatusNoContent},
		{http.MethodGet, "/democontroller/movies/get", "", http.StatusOK},
		{http.MethodPost, "/democontroller/movies/post", `[]`, http.StatusOK},
		{http.MethodPost, "/democontroller/showdevtools", "", http.StatusOK},
		{http.MethodGet, "/tmdbmoviescontroller/movies?name=popular", "", http.StatusOK},
		{http.MethodGet, "/tmdbmoviescontroller/homepage?movieid=550", "", http.StatusOK},
		{http.MethodPost, "/executejavascript/execute", `{"framename":"main","script":"1"}`, http.StatusOK},
		{http.MethodGet, "/ws", "", http.StatusBadRequest},
		{http.MethodGet, "/unknown", "", http.StatusNotFound},
		{http.MethodDelete, "/todolistcontroller/items", "", http.StatusMethodNotAllowed},
	}

	server := newTestServer(testConfig())

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			// Act
			rr := serve(server, tt.method, tt.target, tt.body)

			// Assert
			if rr.Code != tt.wantStatus {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.target, rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_TodoScenario(t *testing.T) {
	// Arrange
	server := newTestServer(testConfig())
	decode := func(rr *httptest.ResponseRecorder) []model.TodoItem {
		t.Helper()
		var response model.APIResponse[[]model.TodoItem]
		if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		return response.Data
	}

	// Act
	serve(server, http.MethodPost, "/todolistcontroller/items", `{"name":"add","text":"A"}`)
	serve(server, http.MethodPost, "/todolistcontroller/items", `{"name":"add","text":"B"}`)
	afterAdd := decode(serve(server, http.MethodPost, "/todolistcontroller/items", `{"name":"add","text":"C"}`))
	serve(server, http.MethodPost, "/todolistcontroller/items", `{"name":"toggleitemcomplete","id":1001,"completed":1}`)
	completed := decode(serve(server, http.MethodGet, "/todolistcontroller/items?name=allcompleted", ""))
	toggled := decode(serve(server, http.MethodPost, "/todolistcontroller/items", `{"name":"toggleall","completed":"1"}`))
	remaining := decode(serve(server, http.MethodPost, "/todolistcontroller/items", `{"name":"clearcompleted"}`))

	// Assert
	wantIDs := []int{1002, 1001, 1000}
	if len(afterAdd) != len(wantIDs) {
		t.Fatalf("after add = %+v", afterAdd)
	}
	for i, id := range wantIDs {
		if afterAdd[i].ID != id {
			t.Errorf("afterAdd[%d].ID = %d, want %d", i, afterAdd[i].ID, id)
		}
	}
	if len(completed) != 1 || completed[0].ID != 1001 {
		t.Errorf("allcompleted = %+v, want only 1001", completed)
	}
	for _, item := range toggled {
		if !item.Completed {
			t.Errorf("item %d should be completed after toggleall", item.ID)
		}
	}
	if remaining == nil || len(remaining) != 0 {
		t.Errorf("clearcompleted = %+v, want empty list", remaining)
	}
}

func TestServer_MiddlewareApplied(t *testing.T) {
	// Arrange
	server := newTestServer(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "local://dist")
	rr := httptest.NewRecorder()

	// Act
	server.Handler().ServeHTTP(rr, req)

	// Assert
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header should be set by middleware")
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "local://dist" {
		t.Error("CORS headers should be set by middleware")
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	// Arrange
	server := newTestServer(testConfig())
	req := httptest.NewRequest(http.MethodOptions, "/todolistcontroller/items", nil)
	req.Header.Set("Origin", "local://dist")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()

	// Act
	server.Handler().ServeHTTP(rr, req)

	// Assert
	if rr.Code != http.StatusNoContent {
		t.Errorf("Preflight status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if rr.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("Preflight should carry allowed methods")
	}
}

func TestServer_ScriptExecutionOverWebSocket(t *testing.T) {
	// Arrange
	server := newTestServer(testConfig())
	ts := httptest.NewServer(server.Handler())
	defer func() {
		server.frames.CloseAllConnections()
		ts.Close()
	}()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?frame=main"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline() error = %v", err)
	}
	var ack model.FrameMessage
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}

	// Act
	resp, err := http.Post(ts.URL+"/executejavascript/execute", "application/json",
		strings.NewReader(`{"framename":"main","script":"alert(1)"}`))
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	defer resp.Body.Close()

	// Assert
	var result model.APIResponse[model.ScriptResult]
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Data.Data != "Executed script :alert(1)" {
		t.Errorf("Data = %q, want %q", result.Data.Data, "Executed script :alert(1)")
	}

	var msg model.FrameMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if msg.Type != model.FrameMessageTypeExecuteScript || msg.Script != "alert(1)" {
		t.Errorf("frame message = %+v", msg)
	}
}

func TestServer_HTTPServerConfiguration(t *testing.T) {
	// Act
	server := newTestServer(testConfig())

	// Assert
	if server.httpServer.Addr != ":8080" {
		t.Errorf("httpServer.Addr = %s, want :8080", server.httpServer.Addr)
	}
	if server.httpServer.ReadHeaderTimeout != 5*time.Second {
		t.Errorf("httpServer.ReadHeaderTimeout = %v, want 5s", server.httpServer.ReadHeaderTimeout)
	}
	if server.httpServer.MaxHeaderBytes != 1<<20 {
		t.Errorf("httpServer.MaxHeaderBytes = %d, want %d", server.httpServer.MaxHeaderBytes, 1<<20)
	}
}

func TestServer_Shutdown(t *testing.T) {
	// Arrange
	cfg := testConfig()
	cfg.ServerPort = 18090
	cfg.MetricsEnabled = false
	server := newTestServer(cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	// Act
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := server.Shutdown(ctx)

	// Assert
	if err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Errorf("Start() error = %v", err)
	}
}
