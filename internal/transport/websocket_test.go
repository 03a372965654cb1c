package transport_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"ws-gateway/internal/gateway"
	"ws-gateway/internal/identity"
	"ws-gateway/internal/router"
	"ws-gateway/internal/session"
	"ws-gateway/internal/transport"
)

type gatewayBody struct {
	IdentitySubject string `json:"identitySubject"`
	Message         string `json:"message"`
	ErrorMessage    string `json:"errorMessage"`
}

func startHost(t *testing.T) *httptest.Server {
	t.Helper()

	host := transport.NewWebsocketHost()
	verifier := identity.NewStaticVerifier(map[string]string{"tok-valid": "alice"})
	gw := gateway.New(verifier, session.NewMemoryStore(), host, time.Minute)
	host.Attach(router.New(gw))

	srv := httptest.NewServer(http.HandlerFunc(host.Handle))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readBody(t *testing.T, conn *websocket.Conn) gatewayBody {
	t.Helper()

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var body gatewayBody
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestWebsocketHost_ConnectAndEcho(t *testing.T) {
	srv := startHost(t)
	conn := dial(t, srv, "?token=tok-valid")

	// First frame is the detached greeting.
	greeting := readBody(t, conn)
	require.Equal(t, "alice", greeting.IdentitySubject)
	require.Equal(t, "Hello alice!!", greeting.Message)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hi")))

	echo := readBody(t, conn)
	require.Equal(t, "alice", echo.IdentitySubject)
	require.Equal(t, "Echo: hi", echo.Message)
}

func TestWebsocketHost_SeparateConnectionsSeparateIdentities(t *testing.T) {
	host := transport.NewWebsocketHost()
	verifier := identity.NewStaticVerifier(map[string]string{
		"tok-a": "alice",
		"tok-b": "bob",
	})
	gw := gateway.New(verifier, session.NewMemoryStore(), host, time.Minute)
	host.Attach(router.New(gw))

	srv := httptest.NewServer(http.HandlerFunc(host.Handle))
	t.Cleanup(srv.Close)

	connA := dial(t, srv, "?token=tok-a")
	connB := dial(t, srv, "?token=tok-b")

	require.Equal(t, "alice", readBody(t, connA).IdentitySubject)
	require.Equal(t, "bob", readBody(t, connB).IdentitySubject)

	require.NoError(t, connB.WriteMessage(websocket.TextMessage, []byte("from b")))
	echo := readBody(t, connB)
	require.Equal(t, "bob", echo.IdentitySubject)
	require.Equal(t, "Echo: from b", echo.Message)
}

func TestWebsocketHost_RefusesMissingToken(t *testing.T) {
	srv := startHost(t)
	conn := dial(t, srv, "")

	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	require.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
	require.Contains(t, closeErr.Text, "401")
}

func TestWebsocketHost_RefusesInvalidToken(t *testing.T) {
	srv := startHost(t)
	conn := dial(t, srv, "?token=tok-bogus")

	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	require.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
}
