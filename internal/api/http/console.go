package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type consolePage struct {
	console *template.Template
	blank   *template.Template
}

func newConsolePage() *consolePage {
	return &consolePage{
		console: template.Must(template.ParseFS(templateFS, "templates/console.html.tmpl")),
		blank:   template.Must(template.ParseFS(templateFS, "templates/blank.html.tmpl")),
	}
}

type consoleData struct {
	Version  string
	Systems  []types.OSOption
	Snapshot types.Snapshot
	Sandbox  string
}

// Console serves the console page
func (h *Handlers) Console(c *gin.Context) {
	data := consoleData{
		Version:  Version,
		Systems:  h.controller.Catalog().List(),
		Snapshot: h.controller.Snapshot(),
		Sandbox:  h.sandbox,
	}
	h.renderHTML(c, h.console.console, data)
}

// Display serves the display surface: the OS skin document, a redirect to
// the remote session view, or a placeholder while powered off.
func (h *Handlers) Display(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	display, document := h.controller.Display()
	switch display.Kind {
	case types.DisplayDocument:
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(document))
	case types.DisplayRemote:
		c.Redirect(http.StatusFound, display.URL)
	default:
		snap := h.controller.Snapshot()
		h.renderHTML(c, h.console.blank, snap)
	}
}

func (h *Handlers) renderHTML(c *gin.Context, tmpl *template.Template, data interface{}) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		h.logger.Error("Failed to render page", zap.String("template", tmpl.Name()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render page"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
