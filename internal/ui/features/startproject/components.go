package startproject

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/djhelper/internal/ui/resources"
)

// Element IDs patched over the event stream.
const (
	toastsID    = "toasts"
	pickerID    = "picker"
	workspaceID = "workspace"
)

var esc = templ.EscapeString[string]

// panelURL returns the URL of a panel action.
func panelURL(id, action string) string {
	return "/panel/" + url.PathEscape(id) + "/" + action
}

// post returns a datastar POST action expression.
func post(u string) string {
	return fmt.Sprintf("@post('%s')", u)
}

// Page renders the full panel page. The page opens its event stream on load;
// the stream attaching is what tells the server the form is ready.
func Page(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!doctype html>\n<html lang=\"en\">\n<head>\n")
		b.WriteString("<meta charset=\"utf-8\">\n")
		b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		fmt.Fprintf(&b, "<title>%s - djhelper</title>\n", esc(data.Title))
		fmt.Fprintf(&b, "<link rel=\"stylesheet\" href=\"%s\">\n", esc(resources.StaticPath("panel.css")))
		fmt.Fprintf(&b, "<script type=\"module\" src=\"%s\"></script>\n", esc(data.DatastarURL))
		b.WriteString("</head>\n")

		fmt.Fprintf(&b, "<body data-signals=\"%s\" data-init=\"%s\">\n",
			esc(`{"projectName":"","folderPath":"","tab":"start"}`),
			esc(fmt.Sprintf("@get('%s')", panelURL(data.PanelID, "events"))))
		if data.IsDev {
			b.WriteString("<div data-init=\"@get('/reload')\"></div>\n")
		}

		b.WriteString("<div class=\"layout\">\n")
		writeSidebar(&b)
		b.WriteString("<main class=\"content\">\n")
		writeStartProjectTab(&b, data.PanelID)
		b.WriteString("<section class=\"tab\" data-show=\"$tab == 'venv'\">\n")
		b.WriteString("<h1>Activate Virtual Env</h1>\n<p class=\"muted\">Coming soon...</p>\n</section>\n")
		b.WriteString("</main>\n</div>\n")

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := WorkspaceList(data.Workspace).Render(ctx, w); err != nil {
			return err
		}
		if err := PickerClosed().Render(ctx, w); err != nil {
			return err
		}
		if err := Toasts(data.PanelID, nil).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body>\n</html>\n")
		return err
	})
}

func writeSidebar(b *strings.Builder) {
	b.WriteString("<nav class=\"sidebar\">\n<div class=\"brand\">djhelper</div>\n<ul>\n")
	writeTabLink(b, "start", "Start Project")
	writeTabLink(b, "venv", "Activate Virtual Env")
	b.WriteString("</ul>\n</nav>\n")
}

func writeTabLink(b *strings.Builder, tab, label string) {
	fmt.Fprintf(b, "<li><button type=\"button\" class=\"tab-link\" data-class:active=\"%s\" data-on:click=\"%s\">%s</button></li>\n",
		esc(fmt.Sprintf("$tab == '%s'", tab)),
		esc(fmt.Sprintf("$tab = '%s'", tab)),
		esc(label))
}

func writeStartProjectTab(b *strings.Builder, id string) {
	b.WriteString("<section class=\"tab\" data-show=\"$tab == 'start'\">\n")
	b.WriteString("<h1>Start a Django Project</h1>\n")
	b.WriteString("<form class=\"form\" data-on:submit__prevent=\"" + esc(post(panelURL(id, "create"))) + "\">\n")

	b.WriteString("<label for=\"projectName\">Project Name</label>\n")
	b.WriteString("<input id=\"projectName\" type=\"text\" placeholder=\"mysite\" autocomplete=\"off\" data-bind=\"projectName\">\n")

	b.WriteString("<label for=\"folderPath\">Folder</label>\n")
	b.WriteString("<div class=\"row\">\n")
	b.WriteString("<input id=\"folderPath\" type=\"text\" readonly placeholder=\"No folder selected\" data-bind=\"folderPath\">\n")
	fmt.Fprintf(b, "<button type=\"button\" id=\"browse\" data-on:click=\"%s\">Browse</button>\n",
		esc(post(panelURL(id, "choose-folder"))))
	b.WriteString("</div>\n")

	b.WriteString("<button type=\"submit\" id=\"create\" class=\"primary\">Create</button>\n")
	b.WriteString("</form>\n</section>\n")
}

// Toasts renders the notification area.
func Toasts(panelID string, toasts []Toast) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, "<div id=\"%s\" class=\"toasts\" aria-live=\"polite\">", toastsID)
		for _, t := range toasts {
			role := "status"
			if t.Kind == ToastError {
				role = "alert"
			}
			fmt.Fprintf(&b, "<div class=\"toast toast-%s\" role=\"%s\"><span>%s</span>", esc(string(t.Kind)), role, esc(t.Text))
			fmt.Fprintf(&b, "<button type=\"button\" class=\"close\" aria-label=\"Dismiss\" data-on:click=\"%s\">&times;</button></div>",
				esc(post(panelURL(panelID, fmt.Sprintf("toasts/%d/dismiss", t.ID)))))
		}
		b.WriteString("</div>\n")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// WorkspaceList renders the workspace folder list.
func WorkspaceList(folders []WorkspaceFolder) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, "<aside id=\"%s\" class=\"workspace\">\n<h2>Workspace</h2>\n", workspaceID)
		if len(folders) == 0 {
			b.WriteString("<p class=\"muted\">No folders yet.</p>\n")
		} else {
			b.WriteString("<ol>\n")
			for _, f := range folders {
				fmt.Fprintf(&b, "<li><strong>%s</strong> <small>%s</small></li>\n", esc(f.Name), esc(f.Path))
			}
			b.WriteString("</ol>\n")
		}
		b.WriteString("</aside>\n")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// PickerClosed renders the empty picker placeholder.
func PickerClosed() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<div id=\"%s\"></div>\n", pickerID)
		return err
	})
}

// Picker renders the folder selection dialog.
func Picker(data PickerData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		open := func(path string) string {
			return esc(post(panelURL(data.PanelID, "picker/open") + "?path=" + url.QueryEscape(path)))
		}

		var b strings.Builder
		fmt.Fprintf(&b, "<div id=\"%s\" class=\"picker-backdrop\">\n", pickerID)
		b.WriteString("<div class=\"picker\" role=\"dialog\" aria-modal=\"true\" aria-labelledby=\"picker-title\">\n")
		b.WriteString("<h2 id=\"picker-title\">Select Folder</h2>\n")
		fmt.Fprintf(&b, "<div class=\"picker-path\">%s</div>\n", esc(data.Dir))

		b.WriteString("<ul class=\"picker-list\">\n")
		if data.Parent != "" {
			fmt.Fprintf(&b, "<li><button type=\"button\" class=\"dir\" data-on:click=\"%s\">..</button></li>\n", open(data.Parent))
		}
		for _, e := range data.Entries {
			fmt.Fprintf(&b, "<li><button type=\"button\" class=\"dir\" data-on:click=\"%s\">%s</button></li>\n", open(e.Path), esc(e.Name))
		}
		b.WriteString("</ul>\n")
		if data.Err != nil {
			fmt.Fprintf(&b, "<p class=\"error\">%s</p>\n", esc(data.Err.Error()))
		}

		b.WriteString("<div class=\"actions\">\n")
		fmt.Fprintf(&b, "<button type=\"button\" id=\"picker-cancel\" data-on:click=\"%s\">Cancel</button>\n",
			esc(post(panelURL(data.PanelID, "picker/cancel"))))
		fmt.Fprintf(&b, "<button type=\"button\" id=\"picker-select\" class=\"primary\" data-on:click=\"%s\">Select Folder</button>\n",
			esc(post(panelURL(data.PanelID, "picker/select"))))
		b.WriteString("</div>\n</div>\n</div>\n")

		_, err := io.WriteString(w, b.String())
		return err
	})
}
