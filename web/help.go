// ABOUTME: Renders the embedded markdown help page with goldmark.
// ABOUTME: The HTML is converted once at first request and reused.
package web

import (
	"bytes"
	_ "embed"
	"html/template"
	"log"
	"net/http"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed content/help.md
var helpMarkdown []byte

var (
	helpOnce sync.Once
	helpHTML template.HTML
)

// markdownToHTML converts markdown to HTML using goldmark with GFM tables. Raw
// HTML in the input is not rendered.
func markdownToHTML(input []byte) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.New(goldmark.WithExtensions(extension.GFM)).Convert(input, &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(string(input)))
	}
	return template.HTML(buf.String())
}

// handleHelp renders the help page.
func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	helpOnce.Do(func() { helpHTML = markdownToHTML(helpMarkdown) })
	data := PageData{Title: "Help", Help: helpHTML}
	if err := s.templates.Render(w, "help.html", data); err != nil {
		log.Printf("web render page=help err=%v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
