package rendering

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/goliatone/go-xtheme/internal/layouts"
	"github.com/goliatone/go-xtheme/internal/variants"
)

const (
	placeholderClass = "xt-ph"
	rowClass         = "xt-ph-row row"
	cellClass        = "xt-ph-cell"
)

// PlaceholderID returns the DOM id of the wrapper of a placeholder layout.
func PlaceholderID(name, flavor string) string {
	if flavor == "" || flavor == variants.BaseIdentifier {
		return "xt-ph-" + name
	}
	return "xt-ph-" + name + "-" + flavor
}

// DefaultLayoutID returns the DOM id of the script holding the default layout.
func DefaultLayoutID(name string) string {
	return "xt-ph-default-layout-" + name
}

func (r *Renderer) writeLayout(ctx context.Context, b *strings.Builder, placeholder *Placeholder, resolved variants.Resolved, edit bool) {
	flavor := resolved.Flavor.Identifier()
	fmt.Fprintf(b, `<div class="%s" id="%s" data-xt-placeholder-name="%s" data-xt-layout="%s"`,
		placeholderClass,
		attr(PlaceholderID(placeholder.Name, flavor)),
		attr(placeholder.Name),
		attr(flavor),
	)
	if edit {
		fmt.Fprintf(b, ` data-xt-layout-key="%s" title="%s"`, attr(resolved.Key), attr(resolved.HelpText))
	}
	b.WriteString(">")

	for y, row := range resolved.Layout.Rows {
		b.WriteString(`<div class="` + rowClass + `"`)
		if edit {
			b.WriteString(` data-xt-row="` + strconv.Itoa(y) + `"`)
		}
		b.WriteString(">")
		for x, cell := range row.Cells {
			classes := append([]string{cellClass}, cell.Classes()...)
			b.WriteString(`<div class="` + attr(strings.Join(classes, " ")) + `"`)
			if edit {
				b.WriteString(` data-xt-cell="` + strconv.Itoa(x) + `"`)
			}
			b.WriteString(">")
			b.WriteString(r.cellMarkup(ctx, placeholder, cell))
			b.WriteString("</div>")
		}
		b.WriteString("</div>")
	}
	b.WriteString("</div>")
}

func (r *Renderer) cellMarkup(ctx context.Context, placeholder *Placeholder, cell *layouts.Cell) string {
	if r.cells == nil {
		return ""
	}
	return r.cells.RenderCell(ctx, cell, placeholder.Context)
}

// writeDefaultLayout embeds the default layout for the editor. "</" is escaped
// so the payload cannot close the script element.
func writeDefaultLayout(b *strings.Builder, name string, layout *layouts.Layout) error {
	payload, err := json.Marshal(layout.Serialize())
	if err != nil {
		return fmt.Errorf("rendering: encode default layout: %w", err)
	}
	escaped := strings.ReplaceAll(string(payload), "</", `<\/`)
	fmt.Fprintf(b, `<script type="application/json" id="%s">%s</script>`, attr(DefaultLayoutID(name)), escaped)
	return nil
}

func attr(value string) string {
	return html.EscapeString(value)
}
