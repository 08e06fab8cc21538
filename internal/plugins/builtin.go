package plugins

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-xtheme/internal/renderctx"
)

const (
	TextPlugin          = "text"
	HTMLPlugin          = "html"
	MarkdownPlugin      = "markdown"
	SnippetPlugin       = "snippet"
	LinksPlugin         = "links"
	CategoryLinksPlugin = "category_links"

	defaultCacheTTL = 10 * time.Minute
)

// ErrTemplatesUnavailable is returned by the snippet plugin when no template
// renderer was wired.
var ErrTemplatesUnavailable = errors.New("plugins: template renderer not configured")

// TemplateRenderer renders a theme template for the current context.
type TemplateRenderer interface {
	RenderTemplate(ctx context.Context, rc *renderctx.Context, name string, data map[string]any) (string, error)
}

// BuiltinOptions carries the dependencies of the built-in plugins.
type BuiltinOptions struct {
	Templates TemplateRenderer
	Markdown  goldmark.Markdown
	CacheTTL  time.Duration
}

// RegisterBuiltins registers the plugins shipped with the engine.
func RegisterBuiltins(registry *Registry, opts BuiltinOptions) error {
	if opts.Markdown == nil {
		opts.Markdown = NewMarkdownEngine()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}

	entries := []struct {
		id      string
		name    string
		factory Factory
	}{
		{TextPlugin, "Text", func(config map[string]any) (Plugin, error) {
			return &textPlugin{config: config}, nil
		}},
		{HTMLPlugin, "Raw HTML", func(config map[string]any) (Plugin, error) {
			return &htmlPlugin{config: config}, nil
		}},
		{MarkdownPlugin, "Markdown", func(config map[string]any) (Plugin, error) {
			return &markdownPlugin{config: config, engine: opts.Markdown, ttl: opts.CacheTTL}, nil
		}},
		{SnippetPlugin, "Template snippet", func(config map[string]any) (Plugin, error) {
			return &snippetPlugin{config: config, templates: opts.Templates, ttl: opts.CacheTTL}, nil
		}},
		{LinksPlugin, "Links", func(config map[string]any) (Plugin, error) {
			return &linksPlugin{config: config}, nil
		}},
		{CategoryLinksPlugin, "Category links", func(config map[string]any) (Plugin, error) {
			return &categoryLinksPlugin{config: config}, nil
		}},
	}
	for _, entry := range entries {
		if err := registry.Register(entry.id, entry.factory, WithDisplayName(entry.name)); err != nil {
			return err
		}
	}
	return nil
}

// NewMarkdownEngine returns the goldmark engine used by the markdown plugin.
func NewMarkdownEngine() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}

type textPlugin struct {
	config map[string]any
}

var textTags = []Choice{
	{Value: "p", Label: "Paragraph"},
	{Value: "h1", Label: "Heading 1"},
	{Value: "h2", Label: "Heading 2"},
	{Value: "h3", Label: "Heading 3"},
	{Value: "div", Label: "Block"},
}

func (p *textPlugin) Fields() []Field {
	return []Field{
		{Name: "text", Label: "Text", Type: FieldTextarea, Required: true, MaxLength: 2000},
		{Name: "tag", Label: "Element", Type: FieldChoice, Default: "p", Choices: textTags},
	}
}

func (p *textPlugin) Render(context.Context, *renderctx.Context) (string, error) {
	text := stringValue(p.config, "text", "")
	if text == "" {
		return "", nil
	}
	tag := stringValue(p.config, "tag", "p")
	if !validChoice(textTags, tag) {
		tag = "p"
	}
	return fmt.Sprintf("<%s>%s</%s>", tag, html.EscapeString(text), tag), nil
}

type htmlPlugin struct {
	config map[string]any
}

func (p *htmlPlugin) Fields() []Field {
	return []Field{{Name: "html", Label: "Markup", Type: FieldTextarea}}
}

func (p *htmlPlugin) Render(context.Context, *renderctx.Context) (string, error) {
	return stringValue(p.config, "html", ""), nil
}

type markdownPlugin struct {
	config map[string]any
	engine goldmark.Markdown
	ttl    time.Duration
}

func (p *markdownPlugin) Fields() []Field {
	return []Field{{Name: "text", Label: "Markdown", Type: FieldMarkdown, Required: true}}
}

func (p *markdownPlugin) Render(context.Context, *renderctx.Context) (string, error) {
	source := stringValue(p.config, "text", "")
	if source == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := p.engine.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	return buf.String(), nil
}

func (p *markdownPlugin) CacheKey(*renderctx.Context) string {
	return digest(stringValue(p.config, "text", ""))
}

func (p *markdownPlugin) CacheTTL() time.Duration { return p.ttl }

type snippetPlugin struct {
	config    map[string]any
	templates TemplateRenderer
	ttl       time.Duration
}

func (p *snippetPlugin) Fields() []Field {
	return []Field{
		{Name: "template", Label: "Template", Type: FieldText, Required: true},
		{Name: "title", Label: "Title", Type: FieldText},
		{Name: "cache", Label: "Cache output", Type: FieldBoolean, Default: true},
	}
}

func (p *snippetPlugin) Render(ctx context.Context, rc *renderctx.Context) (string, error) {
	name := stringValue(p.config, "template", "")
	if name == "" {
		return "", nil
	}
	if p.templates == nil {
		return "", ErrTemplatesUnavailable
	}
	data := map[string]any{
		"config":  cloneConfig(p.config),
		"title":   stringValue(p.config, "title", ""),
		"context": rc.Env(ctx),
	}
	return p.templates.RenderTemplate(ctx, rc, name, data)
}

// CacheKey covers the whole config and every context value the template
// receives. The visitor id stands in for group membership.
func (p *snippetPlugin) CacheKey(rc *renderctx.Context) string {
	entities := map[string]string{}
	keyed := map[string]any{"config": p.config, "entities": entities}
	if rc != nil {
		for kind, entity := range rc.Entities {
			if entity != nil {
				entities[kind] = entity.EntityID() + "\x00" + entity.DisplayName()
			}
		}
		keyed["tenant"] = rc.TenantID()
		keyed["theme"] = rc.Theme
		keyed["view"] = rc.View
		keyed["kind"] = string(rc.VisitorKind())
		keyed["edit"] = rc.EditMode()
		keyed["values"] = rc.Values
		if rc.Visitor != nil {
			keyed["visitor"] = rc.Visitor.VisitorID()
		}
	}
	encoded, err := json.Marshal(keyed)
	if err != nil {
		encoded = fmt.Appendf(nil, "%#v", keyed)
	}
	return digest(string(encoded))
}

func (p *snippetPlugin) CacheTTL() time.Duration {
	if cache, ok := p.config["cache"].(bool); ok && !cache {
		return 0
	}
	return p.ttl
}

type linksPlugin struct {
	config map[string]any
}

func (p *linksPlugin) Render(context.Context, *renderctx.Context) (string, error) {
	items, _ := p.config["links"].([]any)
	if len(items) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString(`<ul class="xt-links">`)
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		url := stringValue(entry, "url", "")
		label := stringValue(entry, "label", url)
		if url == "" {
			continue
		}
		fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, html.EscapeString(url), html.EscapeString(label))
	}
	b.WriteString(`</ul>`)
	return b.String(), nil
}

type categoryLinksPlugin struct {
	config map[string]any
}

func (p *categoryLinksPlugin) Fields() []Field {
	return []Field{
		{Name: "title", Label: "Title", Type: FieldText},
		{Name: "url_prefix", Label: "URL prefix", Type: FieldText, Default: "/categories/"},
	}
}

func (p *categoryLinksPlugin) IsContextValid(rc *renderctx.Context) bool {
	_, ok := rc.Entity(renderctx.EntityCategory)
	return ok
}

func (p *categoryLinksPlugin) Render(_ context.Context, rc *renderctx.Context) (string, error) {
	category, ok := rc.Entity(renderctx.EntityCategory)
	if !ok {
		return "", nil
	}
	prefix := stringValue(p.config, "url_prefix", "/categories/")
	var b strings.Builder
	b.WriteString(`<nav class="xt-category-links">`)
	if title := stringValue(p.config, "title", ""); title != "" {
		fmt.Fprintf(&b, `<h4>%s</h4>`, html.EscapeString(title))
	}
	fmt.Fprintf(&b, `<a href="%s">%s</a>`,
		html.EscapeString(prefix+category.EntityID()),
		html.EscapeString(category.DisplayName()))
	b.WriteString(`</nav>`)
	return b.String(), nil
}

func stringValue(config map[string]any, key, fallback string) string {
	value, ok := config[key]
	if !ok || value == nil {
		return fallback
	}
	if text, ok := value.(string); ok {
		if strings.TrimSpace(text) == "" {
			return fallback
		}
		return text
	}
	return fmt.Sprint(value)
}

func validChoice(choices []Choice, value string) bool {
	for _, choice := range choices {
		if choice.Value == value {
			return true
		}
	}
	return false
}

func digest(value string) string {
	sum := sha1.Sum([]byte(value))
	return hex.EncodeToString(sum[:])
}
