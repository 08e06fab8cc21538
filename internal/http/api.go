package http

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-xtheme/internal/domain"
	"github.com/goliatone/go-xtheme/internal/editor"
	"github.com/goliatone/go-xtheme/internal/layouts"
	"github.com/goliatone/go-xtheme/internal/logging"
	"github.com/goliatone/go-xtheme/internal/renderctx"
	"github.com/goliatone/go-xtheme/internal/rendering"
	"github.com/goliatone/go-xtheme/internal/themes"
	"github.com/goliatone/go-xtheme/internal/views"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

// DefaultBasePath is where Routes mounts the endpoints.
const DefaultBasePath = "/xtheme"

// API serves the editor and preview endpoints.
type API struct {
	basePath string
	renderer *rendering.Renderer
	views    views.Service
	themes   themes.Service
	editor   *editor.Editor
	context  ContextResolver
	logger   interfaces.Logger
}

// Option mutates the API configuration.
type Option func(*API)

// NewAPI constructs an API instance. A nil editor leaves the command
// endpoint unmounted.
func NewAPI(renderer *rendering.Renderer, viewService views.Service, themeService themes.Service, ed *editor.Editor, opts ...Option) *API {
	api := &API{
		basePath: DefaultBasePath,
		renderer: renderer,
		views:    viewService,
		themes:   themeService,
		editor:   ed,
		context:  HeaderContext(""),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base path (defaults to "/xtheme").
func WithBasePath(path string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithContextResolver overrides how render contexts are built from requests.
func WithContextResolver(resolver ContextResolver) Option {
	return func(api *API) {
		if resolver != nil {
			api.context = resolver
		}
	}
}

// WithLogger sets the API logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		api.logger = logging.Ensure(logger)
	}
}

// Routes returns a router serving every endpoint under the base path.
func (api *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogFields)
	r.Route(joinPath(api.basePath, ""), func(r chi.Router) {
		r.Post("/themes/{id}/activate", api.activateTheme)
		r.Get("/_versions/{view}", api.listVersions)
		r.Get("/{view}/{placeholder}", api.preview)
		if api.editor != nil {
			r.Post("/{view}/{placeholder}/commands", api.dispatch)
		}
	})
	return r
}

// requestLogFields stores the request id and route on the request context so
// loggers resolved through WithContext include them.
func requestLogFields(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.ContextWithFields(r.Context(), map[string]any{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type commandResponse struct {
	Command string           `json:"command"`
	Changed bool             `json:"changed"`
	Status  string           `json:"status"`
	Layout  layouts.Document `json:"layout"`
}

func (api *API) dispatch(w http.ResponseWriter, r *http.Request) {
	rc, ok := api.requestContext(w, r)
	if !ok {
		return
	}
	if rc.Visitor == nil || !rc.Visitor.CanEdit() {
		writeError(w, ErrForbidden)
		return
	}

	cmd, err := decodeCommand(r)
	if err != nil {
		writeError(w, editorValidation(err))
		return
	}

	placeholder := chi.URLParam(r, "placeholder")
	binding, err := api.renderer.Bind(r.Context(), rc, placeholder, true)
	if err != nil {
		writeError(w, err)
		return
	}

	opts := []editor.SessionOption{editor.WithLayoutKey(r.URL.Query().Get("layout_key"))}
	if cmd.X != nil && cmd.Y != nil {
		opts = append(opts, editor.WithSelection(*cmd.X, *cmd.Y))
	}
	session, err := editor.NewSession(binding.Config, placeholder, opts...)
	if err != nil {
		writeError(w, err)
		return
	}

	outcome, err := api.editor.Dispatch(r.Context(), session, cmd)
	if err != nil {
		api.logger.WithContext(r.Context()).Warn("http.editor.command_failed", "command", cmd.Command, "placeholder", placeholder, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{
		Command: outcome.Command,
		Changed: outcome.Changed,
		Status:  string(outcome.Status),
		Layout:  outcome.Layout.Serialize(),
	})
}

func (api *API) preview(w http.ResponseWriter, r *http.Request) {
	rc, ok := api.requestContext(w, r)
	if !ok {
		return
	}
	ctx := logging.ContextWithFields(rendering.WithRequestCache(r.Context()), map[string]any{
		"tenant": rc.TenantID(),
		"view":   rc.View,
	})
	markup, err := api.renderer.RenderPlaceholder(ctx, rc, chi.URLParam(r, "placeholder"), nil)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(markup))
}

func (api *API) listVersions(w http.ResponseWriter, r *http.Request) {
	rc, ok := api.requestContext(w, r)
	if !ok {
		return
	}
	theme, err := api.themes.GetCurrentTheme(r.Context(), rc.TenantID())
	if err != nil {
		writeError(w, err)
		return
	}
	versions, err := api.views.ListVersions(r.Context(), views.Key{Tenant: rc.TenantID(), Theme: theme.ID, View: rc.View})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"theme":    theme.ID,
		"view":     rc.View,
		"versions": versions,
	})
}

func (api *API) activateTheme(w http.ResponseWriter, r *http.Request) {
	rc, ok := api.requestContext(w, r)
	if !ok {
		return
	}
	if rc.Visitor == nil || !rc.Visitor.CanEdit() {
		writeError(w, ErrForbidden)
		return
	}
	theme, err := api.themes.SetCurrentTheme(r.Context(), chi.URLParam(r, "id"), rc.TenantID())
	if err != nil {
		writeError(w, err)
		return
	}
	api.logger.WithContext(r.Context()).Info("http.theme.activated", "tenant", rc.TenantID(), "theme", theme.ID)
	writeJSON(w, http.StatusOK, theme)
}

func (api *API) requestContext(w http.ResponseWriter, r *http.Request) (*renderctx.Context, bool) {
	rc, err := api.context(r)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if rc == nil {
		writeError(w, fmt.Errorf("http: no render context for request"))
		return nil, false
	}
	rc = rc.Clone()
	if view := chi.URLParam(r, "view"); view != "" {
		rc.View = view
	}
	return rc, true
}

func decodeCommand(r *http.Request) (editor.Command, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var cmd editor.Command
		if err := decodeJSON(r, &cmd); err != nil {
			return editor.Command{}, err
		}
		return cmd, nil
	}
	if err := r.ParseForm(); err != nil {
		return editor.Command{}, err
	}
	return editor.ParseValues(r.PostForm)
}

func editorValidation(err error) error {
	return domain.NewValidationError(err, "invalid editor command")
}
