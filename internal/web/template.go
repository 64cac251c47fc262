package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/devpanel/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"radioClass": func(s string) string {
		switch s {
		case "WIFI_ACTIVE", "BLE_ACTIVE":
			return "on"
		case "IDLE":
			return "off"
		default:
			return "unknown"
		}
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Device Panel</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; vertical-align: top; }
th { width: 40%; }
td.field { white-space: pre; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Device Panel{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>Display</h2>
<table>
{{range .Rows}}<tr><th>{{.Name}}</th><td class="field" id="field-{{.Name}}">{{.Text}}</td></tr>
{{end}}<tr><th>image</th><td id="field-image">{{if .Image}}{{.Image}}{{else}}none{{end}}</td></tr>
<tr><th>carousel</th><td>slide {{.Slide}}{{if .Scrollable}}, scrollable{{end}}</td></tr>
</table>

<h2>Radio</h2>
<table>
<tr><th>Owner</th><td class="{{radioClass .Radio}}">{{.Radio}}</td></tr>
<tr><th>BLE devices</th><td>{{len .Devices}}</td></tr>
{{range .Devices}}<tr><th></th><td>{{.}}</td></tr>
{{end}}</table>

<h2>Gestures</h2>
<table>
<tr><th>Single click</th><td>{{.Gestures.SingleClick}}</td></tr>
<tr><th>Double click</th><td>{{.Gestures.DoubleClick}}</td></tr>
<tr><th>Long press</th><td>{{.Gestures.LongPress}}</td></tr>
<tr><th>Idle cycles</th><td>{{.Gestures.Idle}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Session</th><td>{{.Config.Session}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Button</th><td>pin {{.Config.ButtonPin}}, double {{.Config.DoubleClickMs}}ms, long {{.Config.LongPressMs}}ms</td></tr>
<tr><th>Telemetry step</th><td>{{.Config.StepMs}}ms</td></tr>
<tr><th>UI</th><td>{{.Config.UI}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> <a href="/fields.json">fields</a></p>
{{if .Config.WSBroker}}
<script src="/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var prefix = "{{.Config.Prefix}}/ui/";
  var dot = document.getElementById("live-dot");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(prefix + "#");
  });

  client.on("reconnect", function() {
    setDot("pending", "reconnecting");
  });

  client.on("offline", function() {
    setDot("err", "offline");
  });

  client.on("error", function() {
    setDot("err", "error");
  });

  client.on("message", function(t, payload) {
    if (t.indexOf(prefix) !== 0) {
      return;
    }
    var el = document.getElementById("field-" + t.substring(prefix.length));
    if (el) {
      el.textContent = payload.toString();
    }
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Rows   []FieldJSON
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Rows:     fieldRows(snap),
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("web: render: %v", err)
	}
}
