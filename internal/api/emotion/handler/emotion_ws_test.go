package emotionHandler

import (
	"EmotionAnalyzer/internal/api/emotion"
	"net"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func serveWS(t *testing.T, svc *fakeService, query string) *websocket.Conn {
	t.Helper()

	app := newTestApp(t, svc)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })

	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/emotion/ws"+query, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial: %v (status %d)", err, status)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestWebSocketFrames(t *testing.T) {
	faces := []any{map[string]any{"dominant_emotion": "surprise"}}
	conn := serveWS(t, &fakeService{result: faces}, "?detector_backend=mtcnn")

	if err := conn.WriteMessage(websocket.BinaryMessage, pngHeader); err != nil {
		t.Fatal(err)
	}
	var got []any
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, faces) {
		t.Errorf("reply = %v, want %v", got, faces)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	var errBody map[string]string
	if err := conn.ReadJSON(&errBody); err != nil {
		t.Fatal(err)
	}
	if errBody["error"] == "" {
		t.Errorf("expected error reply, got %v", errBody)
	}
}

func TestWebSocketErrorReply(t *testing.T) {
	conn := serveWS(t, &fakeService{err: emotion.ErrNoFaceDetected}, "")

	if err := conn.WriteMessage(websocket.BinaryMessage, pngHeader); err != nil {
		t.Fatal(err)
	}
	var body map[string]string
	if err := conn.ReadJSON(&body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != "NO_FACE_DETECTED" {
		t.Errorf("code = %q, want NO_FACE_DETECTED", body["code"])
	}
}

func TestWebSocketRejectsUnknownBackend(t *testing.T) {
	app := newTestApp(t, &fakeService{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/emotion/ws?detector_backend=haar", nil)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("resp = %v, want 400", resp)
	}
}
