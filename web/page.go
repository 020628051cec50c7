package web

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/uijit/canvas"
)

// The receiver page is a thin shell: it follows the surface's WebSocket
// stream and shows the raw state. Rendering the component tree is the
// receiver application's job.
var pageTmpl = template.Must(template.New("canvas").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { margin: 0; background: #111; color: #eee; font-family: monospace; }
  #status { padding: 8px 12px; background: #222; font-size: 12px; }
  #state { padding: 12px; white-space: pre-wrap; font-size: 13px; }
</style>
</head>
<body>
<div id="status">connecting…</div>
<pre id="state"></pre>
<script>
(function () {
  var surfaceID = {{.SurfaceID}};
  var status = document.getElementById("status");
  var state = document.getElementById("state");
  var closed = false;

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws/" + surfaceID);

    ws.onopen = function () { status.textContent = "connected — " + surfaceID; };
    ws.onmessage = function (ev) {
      var msg = JSON.parse(ev.data);
      if (msg.type === "close") {
        closed = true;
        status.textContent = "surface closed";
        return;
      }
      status.textContent = msg.type + " v" + msg.version + " — " + surfaceID;
      state.textContent = JSON.stringify(msg, null, 2);
    };
    ws.onclose = function () {
      if (closed) return;
      status.textContent = "disconnected — retrying";
      setTimeout(connect, 2000);
    };
  }
  connect();
})();
</script>
</body>
</html>
`))

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	surfaceID := chi.URLParam(r, "surfaceID")
	snap, err := s.mgr.Get(r.Context(), surfaceID)
	if err != nil {
		if errors.Is(err, canvas.ErrNotFound) {
			writeError(w, 404, err)
			return
		}
		writeError(w, 500, err)
		return
	}

	title := snap.Name
	if title == "" {
		title = surfaceID
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, map[string]any{
		"SurfaceID": surfaceID,
		"Title":     title,
	}); err != nil {
		s.logger.Error("web: render page", "surface_id", surfaceID, "error", err)
	}
}
