package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/compost-controller/internal/logic"
	"github.com/sweeney/compost-controller/internal/status"
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
	"onOff": status.OnOff,
	"f2":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Compost Controller</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
pre.lcd { background: #2b4a1e; color: #c8f7a0; padding: 6px 10px; width: 16ch; }
</style>
</head>
<body>
<h1>Compost Controller</h1>

<pre class="lcd">{{index .Display 0}}
{{index .Display 1}}</pre>

<h2>Readings</h2>
{{if .Ready}}<table>
<tr><th>Temperature</th><td>{{f2 .Readings.Temperature}} &deg;C</td></tr>
<tr><th>Humidity</th><td>{{f2 .Readings.Humidity}} %</td></tr>
<tr><th>pH</th><td>{{f2 .Readings.PH}}</td></tr>
<tr><th>Soil moisture</th><td>{{.Readings.SoilMoisture}} %</td></tr>
<tr><th>Last tick</th><td>{{.LastTick.UTC.Format "2006-01-02T15:04:05Z07:00"}}</td></tr>
</table>{{else}}<p>Waiting for the first valid reading.</p>{{end}}

<h2>Actuators</h2>
<table>
{{range .Outputs}}<tr><th>{{.Name}}</th><td id="{{.Name}}" class="{{if .On}}on{{else}}off{{end}}">{{onOff .On}}</td></tr>
{{end}}</table>

{{if .Ready}}<h2>Gases (ppm)</h2>
<table>
{{range .Gases}}<tr><th>{{.Compound}}</th><td>{{f2 .PPM}}</td></tr>
{{end}}</table>{{end}}

<h2>Counters</h2>
<table>
<tr><th>Ticks</th><td>{{.Counts.Ticks}}</td></tr>
<tr><th>Rejected</th><td>{{.Counts.Rejected}}</td></tr>
<tr><th>Aeration pulses</th><td>{{.Counts.Pulses}}</td></tr>
{{if .Counts.Pulses}}<tr><th>Last aeration</th><td id="last_aeration">{{.LastAeration.UTC.Format "2006-01-02T15:04:05Z07:00"}}</td></tr>
{{end}}<tr><th>Lamp switches</th><td>{{.Counts.LampSwitches}}</td></tr>
<tr><th>Telemetry dropped</th><td>{{.Counts.EmitFailures}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>Transport</th><td>{{.Config.Transport}}</td></tr>
{{if .Config.Broker}}<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Instance</th><td>{{.Config.Instance}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z07:00"}}</td></tr>
<tr><th>Setpoints</th><td>{{.Config.TempSetpoint}} &plusmn; {{.Config.TempDeadband}} &deg;C, {{.Config.HumiditySetpoint}} % RH</td></tr>
<tr><th>Filter window</th><td>{{.Config.FilterWindow}}</td></tr>
<tr><th>Aeration</th><td>{{.Config.PulseMs}} ms every {{.Config.AerationMs}} ms</td></tr>
</table>
</body>
</html>
`

type output struct {
	Name string
	On   bool
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	outputs := make([]output, len(logic.AllActuators))
	for i, id := range logic.AllActuators {
		outputs[i] = output{Name: string(id), On: snap.Actuators.Get(id)}
	}
	data := struct {
		status.Snapshot
		Uptime  time.Duration
		Outputs []output
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Outputs:  outputs,
	}
	indexTmpl.Execute(w, data)
}
