package dashboard

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
)

var templates = template.Must(template.New("dashboard").Parse(pageTemplates))

// render writes a full page. Rendering goes to a buffer first so a
// template error never leaves a half-written page.
func render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("dashboard: rendering %s: %v", name, err)
		http.Error(w, "rendering page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// renderFragment renders a named template for a websocket fragment.
func renderFragment(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func serveAsset(contentType, content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.Write([]byte(content))
	}
}

const pageTemplates = `
{{define "header"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} - NLP Demos</title>
<link rel="stylesheet" href="/static/style.css">
</head>
<body>
<header class="topbar"><a href="/" class="brand">NLP Demos</a></header>
<main class="main">
{{end}}

{{define "footer"}}</main>
<script src="/static/app.js"></script>
</body>
</html>
{{end}}

{{define "index"}}{{template "header" .}}
<h1>Demos</h1>
<ul class="demo-list">
{{range .Demos}}<li class="demo-list__item">
<a href="/{{.Slug}}"><strong>{{.Title}}</strong></a>
<p>{{.Summary}}</p>
</li>
{{end}}</ul>
{{template "footer" .}}{{end}}

{{define "demo"}}{{template "header" .}}
<div class="demo" data-demo="{{.Demo.Slug}}" data-slug="{{.Slug}}">
<section class="model">
<h1>{{.Demo.Title}}</h1>
<div class="description">{{.Demo.Description}}</div>
<form id="demo-form" class="demo-form">
{{if .Examples}}<label class="field">
<span class="field__label">Examples</span>
<select id="examples">
<option value="">Choose an example...</option>
{{range $i, $ex := .Examples}}<option value="{{$i}}" data-example="{{$ex.JSON}}">{{$ex.Label}}</option>
{{end}}</select>
</label>{{end}}
{{range $f := .Fields}}{{if $f.IsRadio}}<fieldset class="field">
<legend class="field__label">{{$f.Label}}</legend>
{{range $f.Options}}<label class="radio"><input type="radio" name="{{$f.Name}}" value="{{.Name}}"{{if eq .Name $f.Value}} checked{{end}}> {{.Name}} <span class="radio__desc">{{.Description}}</span></label>
{{end}}</fieldset>
{{else}}<label class="field">
<span class="field__label">{{$f.Label}}</span>
<textarea name="{{$f.Name}}" rows="3" placeholder="{{$f.Placeholder}}"{{if not $f.Optional}} required{{end}}>{{$f.Value}}</textarea>
</label>
{{end}}{{end}}
<button type="submit" class="button button--primary">Run</button>
</form>
{{if .Recent}}<aside class="recent">
<h2>Recent runs</h2>
<ul>{{range .Recent}}<li><a href="/{{$.Demo.Slug}}/{{.Slug}}">{{.Label}}</a> <span class="recent__when">{{.When}}</span></li>{{end}}</ul>
</aside>{{end}}
</section>
<div id="flash" class="flash" hidden></div>
{{template "output" .Output}}
</div>
{{template "footer" .}}{{end}}

{{define "output"}}<section id="output" class="output output--{{.State}}" data-state="{{.State}}">
{{template "status" .}}
{{if .HasPrediction}}<div class="answer">{{template "answer" .}}</div>
<h2>Model Interpretations and Attacks</h2>
{{range .Sections}}{{template "section" .}}
{{end}}{{else}}<p class="placeholder">Run the model to see its prediction here.</p>{{end}}
</section>{{end}}

{{define "status"}}<div id="status" class="status">
{{if eq .State "working"}}<p class="status__working">Working...</p>{{end}}
{{if eq .State "error"}}<p class="status__error">Something went wrong. Please try again.{{if .Error}} <span class="status__detail">{{.Error}}</span>{{end}}</p>{{end}}
{{if .Slug}}<p class="permalink">Permalink: <a href="/{{.Demo.Slug}}/{{.Slug}}">/{{.Demo.Slug}}/{{.Slug}}</a></p>{{end}}
</div>{{end}}

{{define "answer"}}{{with .Sentiment}}<h2>Answer</h2>
<p class="answer__text" data-answer="{{.Answer}}">{{.Summary}}</p>
{{end}}{{with .NER}}<h2>Entities</h2>
<p class="entities">{{range .Spans}}{{if .IsEntity}}<span class="entity" style="border-color: {{.Style.Color}}" title="{{.Style.Tooltip}}">{{.Text}} <span class="entity__label">{{.Entity}}</span></span> {{else}}{{.Text}} {{end}}{{end}}</p>
<p class="answer__text">{{.Summary}}</p>
{{end}}{{with .Entailment}}<h2>Summary</h2>
<p class="answer__text">{{.Sentence}}</p>
<div class="entailment">
<svg class="ternary" viewBox="-40 -20 280 220" width="280" height="220" role="img">
<polygon class="ternary__triangle" points="0,173.2 200,173.2 100,0"></polygon>
<text x="100" y="-6" text-anchor="middle">Entailment</text>
<text x="0" y="192" text-anchor="middle">Contradiction</text>
<text x="200" y="192" text-anchor="middle">Neutral</text>
<circle class="ternary__point" cx="{{.X}}" cy="{{.Y}}" r="5"></circle>
</svg>
<table class="probs">
<thead><tr><th>Judgment</th><th>Probability</th></tr></thead>
<tbody>{{range .Rows}}<tr><td>{{.Label}}</td><td>{{.Value}}</td></tr>{{end}}</tbody>
</table>
</div>
{{range .HeatMaps}}{{template "heatmap" .}}{{end}}
{{end}}{{end}}

{{define "heatmap"}}<details class="accordion">
<summary>{{.Title}}</summary>
<p class="blurb">{{.Blurb}}</p>
<table class="heatmap">
<thead><tr><th></th>{{range .ColLabels}}<th><span class="heatmap__col">{{.}}</span></th>{{end}}</tr></thead>
<tbody>{{range $i, $row := .Cells}}<tr><th>{{index $.RowLabels $i}}</th>{{range $row}}<td style="background-color: {{.Color}}" title="{{printf "%.3f" .Value}}"></td>{{end}}</tr>
{{end}}</tbody>
</table>
</details>{{end}}

{{define "section"}}<details class="accordion section" id="{{.ID}}"{{if .Open}} open{{end}}>
<summary>{{.Title}}</summary>
<div class="section__body">
<p class="blurb">{{.Blurb}}{{if .Paper}} <a href="{{.Paper}}" target="_blank" rel="noopener">Paper</a>{{end}}</p>
{{if .Error}}<p class="section__error">{{.Error}}</p>{{end}}
{{if eq .Kind "reduction"}}{{with .Reduction}}{{template "reduction" .}}{{end}}{{end}}
{{if eq .Kind "hotflip"}}{{with .HotFlip}}{{template "hotflip" .}}{{end}}{{end}}
{{if eq .Kind "saliency"}}{{with .Saliency}}{{template "saliency" .}}{{end}}{{end}}
<button type="button" class="button" data-action="{{.Action}}" data-technique="{{.Technique}}" data-interpreter="{{.Interpreter}}"{{if .Pending}} disabled{{end}}>{{if .Pending}}Working...{{else}}{{.Button}}{{end}}</button>
</div>
</details>{{end}}

{{define "reduction"}}{{range .Rows}}<div class="reduction">
{{with .Entity}}<p class="reduction__entity">Reduced input for <span class="entity" style="border-color: {{.Style.Color}}">{{.Text}} <span class="entity__label">{{.Entity}}</span></span></p>
{{end}}<p><strong>Original Input:</strong> {{template "spans" .Original}}</p>
<p><strong>Reduced Input:</strong> {{template "spans" .Reduced}}</p>
</div>
{{end}}{{end}}

{{define "hotflip"}}{{with .Premise}}<p><strong>Premise:</strong> {{.}}</p>
{{end}}<p><strong>Original Input:</strong> {{template "spans" .Original}}</p>
{{range .Flipped}}<p><strong>Flipped Input:</strong> {{template "spans" .}}</p>
{{end}}{{with .NewLabel}}<p><strong>New Prediction:</strong> {{.}}</p>
{{end}}{{end}}

{{define "saliency"}}{{range .Sections}}<div class="saliency">
<h3>{{.Label}}</h3>
{{template "tokens" .}}
<label class="topk">Top
<input type="range" min="0" max="{{len .Weights}}" value="{{.TopK.Effective}}" data-section="{{.Key}}">
<input type="number" min="0" max="{{len .Weights}}" value="{{.TopK}}" data-section="{{.Key}}">
most important words</label>
</div>
{{end}}{{end}}

{{define "tokens"}}<p class="tokens" id="tokens-{{.Key}}">{{template "spans" .Spans}}</p>{{end}}

{{define "spans"}}{{range .}}<span class="token{{if .Blank}} token--blank{{end}}" style="background-color: {{.Color}}"{{with .Tip}} title="{{.}}"{{end}}>{{if .Strike}}<s>{{.Token}}</s>{{else}}{{.Token}}{{end}}</span> {{end}}{{end}}
`

const cssContent = `:root {
  --bg: #ffffff;
  --bg-secondary: #f8f9fa;
  --text: #212529;
  --text-muted: #868e96;
  --border: #dee2e6;
  --accent: #228be6;
  --accent-hover: #1c7ed6;
  --error: #e03131;
  --shadow: 0 1px 3px rgba(0,0,0,0.08);
}

@media (prefers-color-scheme: dark) {
  :root {
    --bg: #1a1b26;
    --bg-secondary: #1f2030;
    --text: #c0caf5;
    --text-muted: #565f89;
    --border: #292e42;
    --accent: #7aa2f7;
    --accent-hover: #89b4fa;
    --error: #f7768e;
    --shadow: 0 1px 3px rgba(0,0,0,0.3);
  }
}

* { box-sizing: border-box; }
body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background: var(--bg); color: var(--text); line-height: 1.5; }
a { color: var(--accent); text-decoration: none; }
a:hover { color: var(--accent-hover); text-decoration: underline; }

.topbar { padding: 12px 24px; border-bottom: 1px solid var(--border); background: var(--bg-secondary); }
.brand { font-weight: 600; font-size: 1.1rem; color: var(--text); }
.main { max-width: 1200px; margin: 0 auto; padding: 24px; }

.demo-list { list-style: none; padding: 0; display: grid; grid-template-columns: repeat(auto-fill, minmax(280px, 1fr)); gap: 16px; }
.demo-list__item { border: 1px solid var(--border); border-radius: 8px; padding: 16px; box-shadow: var(--shadow); }

.demo { display: grid; grid-template-columns: minmax(300px, 1fr) minmax(300px, 1fr); gap: 32px; }
@media (max-width: 900px) { .demo { grid-template-columns: 1fr; } }

.field { display: block; margin-bottom: 16px; border: 0; padding: 0; }
.field__label { display: block; font-weight: 600; margin-bottom: 4px; }
.field textarea, .field select { width: 100%; padding: 8px; border: 1px solid var(--border); border-radius: 4px; background: var(--bg); color: var(--text); font: inherit; }
.radio { display: block; }
.radio__desc { color: var(--text-muted); font-size: 0.9em; }

.button { padding: 6px 14px; border: 1px solid var(--border); border-radius: 4px; background: var(--bg-secondary); color: var(--text); cursor: pointer; font: inherit; }
.button:disabled { opacity: 0.6; cursor: progress; }
.button--primary { background: var(--accent); border-color: var(--accent); color: #fff; }
.button--primary:hover { background: var(--accent-hover); }

.recent ul { padding-left: 18px; }
.recent__when { color: var(--text-muted); font-size: 0.85em; }

.flash { padding: 8px 12px; border: 1px solid var(--error); border-radius: 4px; color: var(--error); grid-column: 1 / -1; }

.output { border-left: 1px solid var(--border); padding-left: 24px; }
.output--working .answer { opacity: 0.5; }
.placeholder { color: var(--text-muted); }
.status__working { color: var(--accent); }
.status__error { color: var(--error); }
.status__detail { display: block; font-size: 0.85em; color: var(--text-muted); }

.accordion { border: 1px solid var(--border); border-radius: 6px; margin: 12px 0; padding: 8px 12px; }
.accordion summary { cursor: pointer; font-weight: 600; }
.section__error { color: var(--error); }
.blurb { color: var(--text-muted); }

.token { padding: 1px 3px; border-radius: 3px; }
.token--blank { color: transparent; }
.entity { border: 2px solid; border-radius: 4px; padding: 0 4px; }
.entity__label { font-size: 0.7em; font-weight: 700; text-transform: uppercase; }

.entailment { display: flex; flex-wrap: wrap; gap: 24px; align-items: center; }
.ternary__triangle { fill: none; stroke: var(--text-muted); stroke-width: 1.5; }
.ternary text { fill: var(--text); font-size: 12px; }
.ternary__point { fill: var(--accent); }
.probs { border-collapse: collapse; }
.probs th, .probs td { border-bottom: 1px solid var(--border); padding: 4px 12px; text-align: left; }

.heatmap { border-collapse: collapse; font-size: 0.8em; }
.heatmap td { width: 22px; height: 22px; border: 1px solid var(--bg); }
.heatmap th { padding: 2px 6px; font-weight: 400; text-align: right; }
.heatmap__col { writing-mode: vertical-rl; transform: rotate(180deg); }

.topk { display: flex; align-items: center; gap: 8px; }
.topk input[type=number] { width: 64px; }
`

const jsContent = `(function() {
  "use strict";

  var root = document.querySelector(".demo");
  if (!root) return;

  var demo = root.getAttribute("data-demo");
  var slug = root.getAttribute("data-slug");
  var form = document.getElementById("demo-form");
  var examples = document.getElementById("examples");
  var socket = null;
  var queue = [];

  function connect() {
    var proto = location.protocol === "https:" ? "wss:" : "ws:";
    var url = proto + "//" + location.host + "/ws/demo?demo=" + encodeURIComponent(demo);
    if (slug) url += "&slug=" + encodeURIComponent(slug);
    socket = new WebSocket(url);
    socket.onopen = function() {
      queue.splice(0).forEach(function(m) { socket.send(m); });
    };
    socket.onmessage = function(ev) { handle(JSON.parse(ev.data)); };
    socket.onclose = function() { socket = null; };
  }

  function send(msg) {
    var data = JSON.stringify(msg);
    if (socket && socket.readyState === WebSocket.OPEN) {
      socket.send(data);
      return;
    }
    queue.push(data);
    if (!socket) connect();
  }

  function setState(state) {
    var out = document.getElementById("output");
    if (!out) return;
    out.className = "output output--" + state;
    out.setAttribute("data-state", state);
  }

  function showError(text) {
    var el = document.getElementById("flash");
    if (!el) return;
    el.textContent = text;
    el.hidden = false;
  }

  function handle(msg) {
    switch (msg.type) {
    case "state":
      setState(msg.output_state);
      break;
    case "navigate":
      window.location.assign(msg.location);
      break;
    case "fragment":
      var el = document.getElementById(msg.target);
      if (el) el.outerHTML = msg.html;
      break;
    case "error":
      showError(msg.content);
      break;
    }
  }

  function formInputs() {
    var inputs = {};
    new FormData(form).forEach(function(value, key) { inputs[key] = value; });
    return inputs;
  }

  form.addEventListener("submit", function(ev) {
    ev.preventDefault();
    document.getElementById("flash").hidden = true;
    setState("working");
    send({type: "predict", inputs: formInputs()});
  });

  if (examples) {
    examples.addEventListener("change", function() {
      var opt = examples.options[examples.selectedIndex];
      var data = opt && opt.getAttribute("data-example");
      if (!data) return;
      var ex = JSON.parse(data);
      Object.keys(ex).forEach(function(name) {
        form.querySelectorAll("[name='" + name + "']").forEach(function(f) {
          if (f.type === "radio") {
            f.checked = f.value === ex[name];
          } else {
            f.value = ex[name];
          }
        });
      });
    });
  }

  document.addEventListener("click", function(ev) {
    var btn = ev.target.closest("button[data-action]");
    if (!btn) return;
    var action = btn.getAttribute("data-action");
    btn.disabled = true;
    btn.textContent = "Working...";
    if (action === "attack") {
      send({type: "attack", technique: btn.getAttribute("data-technique")});
    } else if (action === "interpret") {
      send({type: "interpret", interpreter: btn.getAttribute("data-interpreter")});
    }
  });

  document.addEventListener("input", function(ev) {
    var el = ev.target;
    if (!el.matches || !el.matches("input[data-section]")) return;
    var section = el.getAttribute("data-section");
    document.querySelectorAll("input[data-section]").forEach(function(other) {
      if (other !== el && other.getAttribute("data-section") === section && el.value !== "") {
        other.value = el.value;
      }
    });
    send({type: "top_k", section: section, value: el.value});
  });

  connect();
})();
`
