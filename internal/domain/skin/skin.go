package skin

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

const (
	// BaseSandbox is granted to every frame showing guest content.
	BaseSandbox = "allow-same-origin allow-scripts allow-forms allow-links allow-popups"
	// DownloadSandbox is appended when downloads are allowed.
	DownloadSandbox = "allow-downloads"
)

// Sandbox returns the sandbox attribute value for a content frame.
func Sandbox(allowDownloads bool) string {
	if allowDownloads {
		return BaseSandbox + " " + DownloadSandbox
	}
	return BaseSandbox
}

// Renderer produces OS skin documents.
type Renderer struct {
	tmpl           *template.Template
	allowDownloads bool
}

// NewRenderer parses the skin template.
func NewRenderer(allowDownloads bool) *Renderer {
	return &Renderer{
		tmpl:           template.Must(template.New("skin").Parse(skinTemplate)),
		allowDownloads: allowDownloads,
	}
}

type skinData struct {
	OS      types.OSOption
	URL     string
	Site    string
	Theme   Theme
	Sandbox string
}

// Render returns a self-contained HTML document imitating the OS browser
// chrome around target.
func (r *Renderer) Render(os types.OSOption, target string) (string, error) {
	data := skinData{
		OS:      os,
		URL:     target,
		Site:    SiteLabel(target),
		Theme:   ThemeFor(os.ID),
		Sandbox: Sandbox(r.allowDownloads),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render skin for %s: %w", os.ID, err)
	}
	return buf.String(), nil
}

// SiteLabel returns the registrable domain of rawURL ("example.co.uk"),
// falling back to the host or the raw input.
func SiteLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	host := strings.TrimSuffix(u.Hostname(), ".")
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return site
}

const skinTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Virtual Browser - {{.OS.Name}} - {{.Site}}</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
  font-family: {{.Theme.Font}};
  background: {{.Theme.Background}};
  height: 100vh;
  display: flex;
  flex-direction: column;
  color: {{.Theme.Foreground}};
}
.os-taskbar {
  height: {{.Theme.TaskbarHeight}};
  background: {{.Theme.TaskbarBg}};
  display: flex;
  align-items: center;
  padding: 0 16px;
  backdrop-filter: blur(10px);
  border-bottom: 1px solid rgba(255,255,255,0.2);
  color: {{.Theme.TaskbarFg}};
}
.start-button {
  width: 32px;
  height: 32px;
  background: {{.Theme.StartBg}};
  border: none;
  border-radius: {{.Theme.StartRadius}};
  color: white;
  cursor: pointer;
  display: flex;
  align-items: center;
  justify-content: center;
  margin-right: 12px;
}
.browser-container {
  flex: 1;
  display: flex;
  flex-direction: column;
  background: white;
  margin: {{.Theme.ContainerMargin}};
  border-radius: {{.Theme.ContainerRadius}};
  overflow: hidden;
  box-shadow: 0 8px 32px rgba(0,0,0,0.2);
}
.browser-header {
  height: 48px;
  background: {{.Theme.HeaderBg}};
  display: flex;
  align-items: center;
  padding: 0 16px;
  border-bottom: 1px solid #ddd;
}
.nav-button { border: none; background: transparent; font-size: 16px; cursor: pointer; margin-right: 8px; }
.address-bar {
  flex: 1;
  height: 32px;
  padding: 0 12px;
  border: 1px solid #ccc;
  border-radius: {{.Theme.AddressRadius}};
  background: white;
  font-size: 14px;
  margin: 0 12px;
}
.go-button { border: none; background: #0078d4; color: white; padding: 4px 12px; border-radius: 4px; cursor: pointer; }
.browser-content { flex: 1; border: none; width: 100%; background: white; }
.time { margin-left: auto; font-size: 14px; font-weight: 500; }
</style>
</head>
<body data-os="{{.OS.ID}}">
<div class="os-taskbar">
  <button class="start-button">{{.Theme.StartGlyph}}</button>
  <span class="os-name">{{.OS.Name}} Browser</span>
  <div class="time" id="time"></div>
</div>
<div class="browser-container">
  <div class="browser-header">
    <button class="nav-button" onclick="history.back()">←</button>
    <button class="nav-button" onclick="history.forward()">→</button>
    <input class="address-bar" type="text" value="{{.URL}}" readonly>
    <button class="go-button">Go</button>
  </div>
  <iframe class="browser-content" src="{{.URL}}" frameborder="0" sandbox="{{.Sandbox}}"></iframe>
</div>
<script>
function updateTime() {
  var now = new Date();
  var hours = now.getHours();
  var minutes = now.getMinutes().toString().padStart(2, '0');
  var ampm = hours >= 12 ? 'PM' : 'AM';
  var displayHours = hours % 12 || 12;
  document.getElementById('time').textContent = displayHours + ':' + minutes + ' ' + ampm;
}
setInterval(updateTime, 1000);
updateTime();
</script>
</body>
</html>
`
