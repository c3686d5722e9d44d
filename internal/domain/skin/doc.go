// Package skin renders the cosmetic "OS skin": a standalone HTML document
// with a taskbar and browser chrome wrapping the target URL in a sandboxed
// frame. It is shown on the display surface in skin mode.
package skin
