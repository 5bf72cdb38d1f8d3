package server

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/Domenick1991/flightgate/config"
	"github.com/Domenick1991/flightgate/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		MaxFrameBytes:        1024,
		RegisterGraceSeconds: 5,
		MaxResultRows:        200,
	}
}

func echoRouter() *Router {
	router := NewRouter()
	router.Handle("echo", func(ctx context.Context, data json.RawMessage) (interface{}, string, error) {
		var payload interface{}
		_ = json.Unmarshal(data, &payload)
		return payload, "echoed", nil
	})
	return router
}

// startConn wires one fake client connection into a running server.
func startConn(t *testing.T, srv *Server) net.Conn {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	go srv.handleConn(context.Background(), serverSide)
	t.Cleanup(func() { clientSide.Close() })
	return clientSide
}

func sendFrame(t *testing.T, conn net.Conn, v interface{}) {
	t.Helper()
	frame, err := wire.Encode(v)
	require.NoError(t, err)
	conn.SetWriteDeadline(time.Now().Add(time.Second))
	_, err = conn.Write(frame)
	require.NoError(t, err)
}

func readResponse(t *testing.T, conn net.Conn, decoder *wire.Decoder) *wire.Response {
	t.Helper()
	buf := make([]byte, 4096)
	for {
		if payload, err := decoder.Next(); err == nil && payload != nil {
			resp, err := wire.ParseResponse(payload)
			require.NoError(t, err)
			return resp
		}

		conn.SetReadDeadline(time.Now().Add(time.Second))
		n, err := conn.Read(buf)
		require.NoError(t, err)
		decoder.Feed(buf[:n])
	}
}

func register(t *testing.T, conn net.Conn, decoder *wire.Decoder, tag string) {
	t.Helper()
	sendFrame(t, conn, map[string]interface{}{"tag": tag})
	resp := readResponse(t, conn, decoder)
	require.Equal(t, wire.StatusSuccess, resp.Status)
	require.Equal(t, "Tag registered", resp.Message)
}

func assertClosed(t *testing.T, conn net.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 1)
	_, err := conn.Read(buf)
	assert.Error(t, err, "connection should be closed")
}

func TestServerRegisterThenRequest(t *testing.T) {
	srv := New(testConfig(), echoRouter(), nil)
	conn := startConn(t, srv)
	decoder := wire.NewDecoder(0)

	register(t, conn, decoder, "client_1")
	assert.Equal(t, 1, srv.Registry().Count())

	sendFrame(t, conn, map[string]interface{}{"action": "echo", "data": map[string]interface{}{"n": float64(7)}})
	resp := readResponse(t, conn, decoder)
	assert.Equal(t, wire.StatusSuccess, resp.Status)
	assert.Equal(t, "echo", resp.ActionResponse)
	assert.Equal(t, map[string]interface{}{"n": float64(7)}, resp.Data)
}

func TestServerPipelinedRequestsAnsweredInOrder(t *testing.T) {
	srv := New(testConfig(), echoRouter(), nil)
	conn := startConn(t, srv)
	decoder := wire.NewDecoder(0)

	register(t, conn, decoder, "client_1")

	// Two requests in a single write; responses must come back in order.
	first, err := wire.Encode(map[string]interface{}{"action": "echo", "data": "one"})
	require.NoError(t, err)
	second, err := wire.Encode(map[string]interface{}{"action": "echo", "data": "two"})
	require.NoError(t, err)

	go func() {
		conn.Write(append(append([]byte{}, first...), second...))
	}()

	resp1 := readResponse(t, conn, decoder)
	resp2 := readResponse(t, conn, decoder)
	assert.Equal(t, "one", resp1.Data)
	assert.Equal(t, "two", resp2.Data)
}

func TestServerRejectsMissingTag(t *testing.T) {
	srv := New(testConfig(), echoRouter(), nil)
	conn := startConn(t, srv)
	decoder := wire.NewDecoder(0)

	sendFrame(t, conn, map[string]interface{}{"action": "echo"})
	resp := readResponse(t, conn, decoder)
	assert.Equal(t, wire.StatusError, resp.Status)
	assert.Equal(t, "Missing or invalid tag", resp.Message)
	assertClosed(t, conn)
	assert.Equal(t, 0, srv.Registry().Count())
}

func TestServerRejectsWrongTypedTag(t *testing.T) {
	srv := New(testConfig(), echoRouter(), nil)
	conn := startConn(t, srv)
	decoder := wire.NewDecoder(0)

	sendFrame(t, conn, map[string]interface{}{"tag": 12345})
	resp := readResponse(t, conn, decoder)
	assert.Equal(t, wire.StatusError, resp.Status)
	assert.Equal(t, "Missing or invalid tag", resp.Message)
	assertClosed(t, conn)
}

func TestServerRejectsDuplicateTag(t *testing.T) {
	srv := New(testConfig(), echoRouter(), nil)

	first := startConn(t, srv)
	firstDec := wire.NewDecoder(0)
	register(t, first, firstDec, "client_1")

	second := startConn(t, srv)
	secondDec := wire.NewDecoder(0)
	sendFrame(t, second, map[string]interface{}{"tag": "client_1"})
	resp := readResponse(t, second, secondDec)
	assert.Equal(t, wire.StatusError, resp.Status)
	assert.Equal(t, "Tag already in use", resp.Message)
	assertClosed(t, second)

	// The first session is unaffected.
	sendFrame(t, first, map[string]interface{}{"action": "echo", "data": "still here"})
	assert.Equal(t, "still here", readResponse(t, first, firstDec).Data)
}

func TestServerTagReusableAfterDisconnect(t *testing.T) {
	srv := New(testConfig(), echoRouter(), nil)

	first := startConn(t, srv)
	firstDec := wire.NewDecoder(0)
	register(t, first, firstDec, "client_1")
	first.Close()

	require.Eventually(t, func() bool {
		return srv.Registry().Count() == 0
	}, time.Second, 10*time.Millisecond)

	second := startConn(t, srv)
	register(t, second, wire.NewDecoder(0), "client_1")
}

func TestServerMalformedFirstFrameIsFatal(t *testing.T) {
	srv := New(testConfig(), echoRouter(), nil)
	conn := startConn(t, srv)
	decoder := wire.NewDecoder(0)

	sendFrame(t, conn, []interface{}{1, 2, 3})
	resp := readResponse(t, conn, decoder)
	assert.Equal(t, wire.StatusError, resp.Status)
	assert.Equal(t, "Invalid JSON format", resp.Message)
	assertClosed(t, conn)
}

func TestServerMalformedFrameAfterRegistrationIsNotFatal(t *testing.T) {
	srv := New(testConfig(), echoRouter(), nil)
	conn := startConn(t, srv)
	decoder := wire.NewDecoder(0)

	register(t, conn, decoder, "client_1")

	sendFrame(t, conn, "just a string")
	resp := readResponse(t, conn, decoder)
	assert.Equal(t, wire.StatusError, resp.Status)
	assert.Equal(t, "Invalid JSON format", resp.Message)

	sendFrame(t, conn, map[string]interface{}{"action": "echo", "data": "alive"})
	assert.Equal(t, "alive", readResponse(t, conn, decoder).Data)
}

func TestServerOversizedFrameReportsProtocolError(t *testing.T) {
	srv := New(testConfig(), echoRouter(), nil)
	conn := startConn(t, srv)
	decoder := wire.NewDecoder(0)

	register(t, conn, decoder, "client_1")

	// Declare a length far beyond the configured maximum.
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, 1<<20)
	conn.SetWriteDeadline(time.Now().Add(time.Second))
	_, err := conn.Write(header)
	require.NoError(t, err)

	resp := readResponse(t, conn, decoder)
	assert.Equal(t, wire.StatusError, resp.Status)
	assert.Equal(t, "invalid frame length", resp.Message)

	// Connection survives with a cleared buffer.
	sendFrame(t, conn, map[string]interface{}{"action": "echo", "data": "recovered"})
	assert.Equal(t, "recovered", readResponse(t, conn, decoder).Data)
}

func TestServerUnknownAction(t *testing.T) {
	srv := New(testConfig(), echoRouter(), nil)
	conn := startConn(t, srv)
	decoder := wire.NewDecoder(0)

	register(t, conn, decoder, "client_1")
	sendFrame(t, conn, map[string]interface{}{"action": "frobnicate"})
	resp := readResponse(t, conn, decoder)
	assert.Equal(t, wire.StatusError, resp.Status)
	assert.Equal(t, "unknown action: frobnicate", resp.Message)
}

func TestServerRegistrationGracePeriod(t *testing.T) {
	cfg := testConfig()
	cfg.RegisterGraceSeconds = 1
	srv := New(cfg, echoRouter(), nil)
	conn := startConn(t, srv)

	// Never send a tag; the server must hang up on its own.
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	buf := make([]byte, 1)
	_, err := conn.Read(buf)
	assert.Error(t, err)
}
