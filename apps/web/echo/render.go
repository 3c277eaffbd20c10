package echoweb

import (
	"bytes"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/trezcool/assignflow/core/navigation"
	"github.com/trezcool/assignflow/core/user"
	appfs "github.com/trezcool/assignflow/fs"
)

const (
	layoutTemplate = "templates/layout.gohtml"
	pagesGlob      = "templates/pages/*.gohtml"
)

// raw HTML in descriptions is escaped: WithUnsafe is not set
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// share is part/whole in percent, used for chart bars.
func share(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return part * 100 / whole
}

func templateFuncs(appName string) template.FuncMap {
	return template.FuncMap{
		"appName":  func() string { return appName },
		"markdown": renderMarkdown,
		"share":    share,
		"upper":    strings.ToUpper,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"datetime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006 3:04 PM")
		},
	}
}

// renderer executes the layout with one page template. Pages are parsed once at start.
type renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*renderer)(nil)

func newRenderer(appName string) (*renderer, error) {
	fps, err := fs.Glob(appfs.FS, pagesGlob)
	if err != nil {
		return nil, errors.Wrap(err, "listing page templates")
	}
	r := &renderer{pages: make(map[string]*template.Template, len(fps))}
	for _, fp := range fps {
		tmpl, err := template.New(path.Base(layoutTemplate)).
			Funcs(templateFuncs(appName)).
			ParseFS(appfs.FS, layoutTemplate, fp)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", fp)
		}
		r.pages[strings.TrimSuffix(path.Base(fp), ".gohtml")] = tmpl
	}
	return r, nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return errors.Errorf("no page template %q", name)
	}
	return tmpl.Execute(w, data)
}

// page is what the layout receives; Data is the page's own content.
type page struct {
	User *user.User
	Menu []navigation.MenuItem
	View navigation.Selector
	Data interface{}
}

func render(ctx echo.Context, code int, name string, data interface{}) error {
	p := page{Data: data}
	if store, err := getContextSession(ctx); err == nil {
		p.View = store.View()
		if usr, ok := store.Identity(); ok {
			p.User = &usr
			p.Menu = navigation.Menu(usr.Role)
		}
	}
	return ctx.Render(code, name, p)
}
