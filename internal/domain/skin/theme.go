package skin

import "html/template"

// Theme holds the per-OS chrome values. Values are fixed strings owned by
// this package, so they are trusted as CSS.
type Theme struct {
	Font            template.CSS
	Background      template.CSS
	Foreground      template.CSS
	TaskbarHeight   template.CSS
	TaskbarBg       template.CSS
	TaskbarFg       template.CSS
	StartBg         template.CSS
	StartRadius     template.CSS
	ContainerMargin template.CSS
	ContainerRadius template.CSS
	HeaderBg        template.CSS
	AddressRadius   template.CSS
	StartGlyph      string
}

var (
	windows10Theme = Theme{
		Font:            "Segoe UI, sans-serif",
		Background:      "#0078d4",
		Foreground:      "white",
		TaskbarHeight:   "48px",
		TaskbarBg:       "rgba(0,0,0,0.8)",
		TaskbarFg:       "white",
		StartBg:         "#0078d4",
		StartRadius:     "4px",
		ContainerMargin: "16px",
		ContainerRadius: "8px",
		HeaderBg:        "#e1e1e1",
		AddressRadius:   "4px",
		StartGlyph:      "⊞",
	}

	windows11Theme = Theme{
		Font:            "Segoe UI, sans-serif",
		Background:      "linear-gradient(135deg, #0078d4, #106ebe)",
		Foreground:      "white",
		TaskbarHeight:   "48px",
		TaskbarBg:       "rgba(255,255,255,0.8)",
		TaskbarFg:       "#333",
		StartBg:         "#0078d4",
		StartRadius:     "4px",
		ContainerMargin: "16px",
		ContainerRadius: "8px",
		HeaderBg:        "#e1e1e1",
		AddressRadius:   "4px",
		StartGlyph:      "⊞",
	}

	androidTheme = Theme{
		Font:            "Roboto, sans-serif",
		Background:      "#f8f9fa",
		Foreground:      "#333",
		TaskbarHeight:   "56px",
		TaskbarBg:       "#1976d2",
		TaskbarFg:       "white",
		StartBg:         "transparent",
		StartRadius:     "50%",
		ContainerMargin: "8px",
		ContainerRadius: "12px",
		HeaderBg:        "#f5f5f5",
		AddressRadius:   "24px",
		StartGlyph:      "◉",
	}
)

// ThemeFor picks the chrome for an OS id. Unknown ids get the Windows 10 look.
func ThemeFor(osID string) Theme {
	switch osID {
	case "android":
		return androidTheme
	case "windows11":
		return windows11Theme
	default:
		return windows10Theme
	}
}
