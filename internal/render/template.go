package render

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Reddit Digest – {{.Period}}</title>
<style>
body{margin:0;font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,sans-serif;background:#f4f5f7;color:#1c1c1c}
header{background:#ff4500;color:#fff;padding:24px 32px}
header h1{margin:0 0 4px;font-size:28px}
header p{margin:2px 0;opacity:.9}
nav{background:#fff;border-bottom:1px solid #ddd;padding:12px 32px}
nav ul{list-style:none;margin:0;padding:0;display:flex;flex-wrap:wrap;gap:8px 16px}
nav a{color:#0079d3;text-decoration:none}
main{max-width:960px;margin:0 auto;padding:16px 32px 48px}
h2.group{margin:40px 0 0;padding-top:16px;border-top:3px solid #ff4500}
section.community{margin-top:32px}
section.community h2 a{color:#1c1c1c;text-decoration:none}
.card{background:#fff;border-radius:8px;padding:14px 16px;margin:12px 0;box-shadow:0 1px 3px rgba(0,0,0,.08)}
.card-head{display:flex;align-items:baseline;gap:10px}
.card .title{color:#1c1c1c;font-weight:600;text-decoration:none}
.badge{display:inline-block;min-width:48px;text-align:center;border-radius:12px;padding:2px 8px;font-size:13px;font-weight:700;color:#fff}
.badge-high{background:#d93a00}
.badge-mid{background:#ff8717}
.badge-low{background:#878a8c}
.body{white-space:pre-wrap;margin-top:10px;color:#333;font-size:14px}
.card img,.card video{display:block;max-width:100%;max-height:520px;margin-top:10px;border-radius:4px}
.domain{margin:8px 0 0;font-size:13px}
.domain a{color:#0079d3}
.empty{color:#878a8c;font-style:italic}
</style>
</head>
<body>
<header>
<h1>Reddit Digest</h1>
<p class="period">{{.Period}}</p>
<p class="generated">Generated {{.Generated}}</p>
</header>
<nav>
<ul>
{{- range .Nav}}
<li><a href="#{{.Anchor}}">r/{{.Community}}</a></li>
{{- end}}
</ul>
</nav>
<main>
{{- range .Weekly}}
{{template "section" .}}
{{- end}}
{{- if .HasMonthly}}
<h2 class="group" id="monthly">Monthly</h2>
{{- range .Monthly}}
{{template "section" .}}
{{- end}}
{{- end}}
</main>
</body>
</html>
{{define "section"}}<section class="community" id="{{.Anchor}}">
<h2><a href="{{.CommunityURL}}" target="_blank" rel="noopener">r/{{.Community}}</a></h2>
{{- if .Cards}}
{{- range .Cards}}
{{template "card" .}}
{{- end}}
{{- else}}
<p class="empty">No posts found</p>
{{- end}}
</section>{{end}}
{{define "card"}}<article class="card card-{{.Type}}">
<div class="card-head"><span class="badge badge-{{.Tier}}">{{.ScoreText}}</span><a class="title" href="{{.Link}}" target="_blank" rel="noopener">{{.Title}}</a></div>
{{- if eq .Type "text"}}
{{- if .Body}}
<div class="body">{{.Body}}</div>
{{- end}}
{{- else if or (eq .Type "image") (eq .Type "gallery")}}
{{- with .MediaURL}}
<img src="{{.}}" loading="lazy" alt="">
{{- end}}
{{- else if eq .Type "video"}}
{{- with .MediaURL}}
<video src="{{.}}" controls muted preload="none"></video>
{{- end}}
{{- else}}
{{- with .MediaURL}}
<p class="domain">&#8599; <a href="{{.}}" target="_blank" rel="noopener">{{$.Domain}}</a></p>
{{- end}}
{{- end}}
</article>{{end}}
`
