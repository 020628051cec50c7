package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hazyhaar/uijit/a2ui"
	"github.com/hazyhaar/uijit/canvas"
)

func testServer(t *testing.T) (*canvas.Manager, *httptest.Server) {
	t.Helper()
	mgr := canvas.New(&canvas.Config{Host: "127.0.0.1", ExternalHost: "127.0.0.1"}, slog.Default())
	srv := httptest.NewServer(NewServer(mgr, slog.Default()).Handler())
	t.Cleanup(srv.Close)
	return mgr, srv
}

func wsDial(t *testing.T, srv *httptest.Server, surfaceID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + surfaceID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUpdate(t *testing.T, conn *websocket.Conn) canvas.UpdateMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg canvas.UpdateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return msg
}

func TestHealth(t *testing.T) {
	_, srv := testServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestListSurfaces(t *testing.T) {
	mgr, srv := testServer(t)
	ctx := context.Background()
	mgr.Create(ctx, canvas.CreateRequest{Name: "a", DeviceID: "tv-1"})
	mgr.Create(ctx, canvas.CreateRequest{Name: "b", DeviceID: "tv-2"})

	resp, err := http.Get(srv.URL + "/api/surfaces?device_id=tv-2")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Count    int           `json:"count"`
		Surfaces []canvas.Info `json:"surfaces"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 || body.Surfaces[0].Name != "b" {
		t.Errorf("body = %+v", body)
	}
}

func TestGetSurface(t *testing.T) {
	mgr, srv := testServer(t)
	info, _ := mgr.Create(context.Background(), canvas.CreateRequest{Name: "dash"})

	resp, err := http.Get(srv.URL + "/api/surfaces/" + info.SurfaceID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var snap canvas.Surface
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.ID != info.SurfaceID || snap.Name != "dash" {
		t.Errorf("snap = %+v", snap)
	}
}

func TestGetSurface_NotFound(t *testing.T) {
	_, srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/surfaces/missing")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCanvasPage(t *testing.T) {
	mgr, srv := testServer(t)
	info, _ := mgr.Create(context.Background(), canvas.CreateRequest{Name: "dash"})

	resp, err := http.Get(srv.URL + "/canvas/" + info.SurfaceID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}

	buf := make([]byte, 1<<16)
	n, _ := resp.Body.Read(buf)
	if !strings.Contains(string(buf[:n]), info.SurfaceID) {
		t.Error("page does not reference the surface")
	}
}

func TestCanvasPage_NotFound(t *testing.T) {
	_, srv := testServer(t)
	resp, err := http.Get(srv.URL + "/canvas/missing")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestWS_UnknownSurface(t *testing.T) {
	_, srv := testServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestWS_Stream(t *testing.T) {
	mgr, srv := testServer(t)
	ctx := context.Background()
	info, err := mgr.Create(ctx, canvas.CreateRequest{Name: "weather"})
	if err != nil {
		t.Fatal(err)
	}
	id := info.SurfaceID

	conn := wsDial(t, srv, id)

	// First frame is always the snapshot.
	msg := readUpdate(t, conn)
	if msg.Kind != canvas.KindFullRender || msg.Version != 0 || msg.SurfaceID != id {
		t.Fatalf("snapshot = %+v", msg)
	}

	if _, err := mgr.UpdateComponents(ctx, id, []a2ui.Component{
		{ID: "temp", Kind: "Text", Text: "21°C"},
	}); err != nil {
		t.Fatal(err)
	}
	msg = readUpdate(t, conn)
	if msg.Kind != canvas.KindFullRender || msg.Version != 1 {
		t.Errorf("render = %+v", msg)
	}
	if len(msg.Components) != 2 {
		t.Errorf("render components = %d", len(msg.Components))
	}

	if _, err := mgr.SetData(ctx, id, "/temp", 21.5); err != nil {
		t.Fatal(err)
	}
	msg = readUpdate(t, conn)
	if msg.Kind != canvas.KindDataPatch || msg.Version != 2 {
		t.Errorf("patch = %+v", msg)
	}
	if msg.Components != nil {
		t.Error("patch carries the component tree")
	}

	if err := mgr.Close(ctx, id); err != nil {
		t.Fatal(err)
	}
	// Close repeats the last accepted version; it is not a mutation.
	msg = readUpdate(t, conn)
	if msg.Kind != canvas.KindClose || msg.Version != 2 {
		t.Errorf("close = %+v", msg)
	}

	// After the close message the server ends the connection.
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection close after close message")
	}
}

func TestWS_TwoReceivers(t *testing.T) {
	mgr, srv := testServer(t)
	ctx := context.Background()
	info, _ := mgr.Create(ctx, canvas.CreateRequest{})
	id := info.SurfaceID

	a := wsDial(t, srv, id)
	b := wsDial(t, srv, id)
	readUpdate(t, a)
	readUpdate(t, b)

	deadline := time.Now().Add(5 * time.Second)
	for mgr.Subscribers(id) < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := mgr.Subscribers(id); got != 2 {
		t.Fatalf("Subscribers = %d, want 2", got)
	}

	mgr.SetData(ctx, id, "/n", 1)
	for _, conn := range []*websocket.Conn{a, b} {
		msg := readUpdate(t, conn)
		if msg.Kind != canvas.KindDataPatch || msg.Version != 1 {
			t.Errorf("msg = %+v", msg)
		}
	}

	// One receiver leaving does not disturb the other.
	a.Close()
	mgr.SetData(ctx, id, "/n", 2)
	if msg := readUpdate(t, b); msg.Version != 2 {
		t.Errorf("version = %d", msg.Version)
	}
}
