package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/wishboard/internal/pagination"
	"github.com/rshade/wishboard/internal/wish"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrorKind selects which error placeholder to render.
type ErrorKind int

// Error placeholders. Malformed is shown when the endpoint answered with a
// payload of the wrong shape; Transport when the request itself failed.
const (
	ErrorMalformed ErrorKind = iota
	ErrorTransport
)

// Pagination control actions passed to a LinkFunc.
const (
	ActionPrev = "prev"
	ActionNext = "next"
	ActionGoTo = "goto"
)

// LinkFunc returns the href of a pagination control. page is the page the
// control leads to.
type LinkFunc func(action string, page int) string

type pageLink struct {
	N      int
	Href   string
	Active bool
}

// Options configures a Renderer.
type Options struct {
	Locale      string
	NavBasePath string
	SectionID   string
}

// Renderer renders widget fragments.
type Renderer struct {
	tmpl    *template.Template
	printer *message.Printer
	lang    language.Tag
	base    string
	section string
}

// New parses the embedded templates and prepares the message printer.
func New(opts Options) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	printer, err := NewPrinter(opts.Locale)
	if err != nil {
		return nil, fmt.Errorf("building message catalog: %w", err)
	}

	section := opts.SectionID
	if section == "" {
		section = "wishes"
	}
	return &Renderer{
		tmpl:    tmpl,
		printer: printer,
		lang:    MatchLocale(opts.Locale),
		base:    strings.TrimRight(opts.NavBasePath, "/"),
		section: section,
	}, nil
}

// Language returns the language the renderer was built for.
func (r *Renderer) Language() language.Tag {
	return r.lang
}

// Message returns the localized message for key.
func (r *Renderer) Message(key string, args ...any) string {
	return r.printer.Sprintf(key, args...)
}

// List renders the cards for one page of wishes, or the empty placeholder
// when there are none.
func (r *Renderer) List(items []wish.Wish) (string, error) {
	if len(items) == 0 {
		return r.execute("empty", map[string]any{"Message": r.Message(MsgEmpty)})
	}
	return r.execute("list", map[string]any{"Wishes": items})
}

// Error renders the error placeholder for kind.
func (r *Renderer) Error(kind ErrorKind) (string, error) {
	key := MsgMalformed
	if kind == ErrorTransport {
		key = MsgTransport
	}
	return r.execute("notice", map[string]any{
		"Role":    "alert",
		"Icon":    "fa-exclamation-circle",
		"Message": r.Message(key),
	})
}

// Loading renders the placeholder shown before the first fetch settles.
func (r *Renderer) Loading() (string, error) {
	return r.execute("notice", map[string]any{
		"Role":    "status",
		"Icon":    "fa-spinner fa-spin",
		"Message": r.Message(MsgLoading),
	})
}

// Pagination renders the controls for meta, linked to the navigation
// endpoints under the base path. It returns "" when there is only one page.
func (r *Renderer) Pagination(meta pagination.Meta, maxLinks int) (string, error) {
	return r.PaginationWithLinks(meta, maxLinks, r.navLink)
}

// PaginationWithLinks is Pagination with the hrefs built by link.
func (r *Renderer) PaginationWithLinks(meta pagination.Meta, maxLinks int, link LinkFunc) (string, error) {
	if meta.TotalPages <= 1 {
		return "", nil
	}
	first, last := pagination.Window(meta.CurrentPage, meta.TotalPages, maxLinks)
	var pages []pageLink
	for _, n := range pagination.Pages(first, last) {
		pages = append(pages, pageLink{N: n, Href: link(ActionGoTo, n), Active: n == meta.CurrentPage})
	}
	return r.execute("pagination", map[string]any{
		"Meta":     meta,
		"Pages":    pages,
		"PrevHref": link(ActionPrev, max(pagination.MinPage, meta.CurrentPage-1)),
		"NextHref": link(ActionNext, min(meta.TotalPages, meta.CurrentPage+1)),
		"Label":    r.Message(MsgPaginationLabel),
		"Previous": r.Message(MsgPrevious),
		"Next":     r.Message(MsgNext),
	})
}

// QueryLinks links every control to path?page=n. Views built with it do not
// move the shared widget.
func (r *Renderer) QueryLinks(path string) LinkFunc {
	return func(_ string, page int) string {
		return fmt.Sprintf("%s?page=%d#%s", path, page, r.section)
	}
}

func (r *Renderer) navLink(action string, page int) string {
	if action == ActionGoTo {
		return fmt.Sprintf("%s/page/%d#%s", r.base, page, r.section)
	}
	return fmt.Sprintf("%s/%s#%s", r.base, action, r.section)
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}
