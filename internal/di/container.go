package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-xtheme/internal/cache"
	"github.com/goliatone/go-xtheme/internal/commands"
	"github.com/goliatone/go-xtheme/internal/editor"
	xhttp "github.com/goliatone/go-xtheme/internal/http"
	"github.com/goliatone/go-xtheme/internal/logging"
	"github.com/goliatone/go-xtheme/internal/logging/console"
	"github.com/goliatone/go-xtheme/internal/logging/gologger"
	"github.com/goliatone/go-xtheme/internal/plugins"
	"github.com/goliatone/go-xtheme/internal/rendering"
	"github.com/goliatone/go-xtheme/internal/runtimeconfig"
	"github.com/goliatone/go-xtheme/internal/themes"
	"github.com/goliatone/go-xtheme/internal/variants"
	"github.com/goliatone/go-xtheme/internal/views"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger

	kv       interfaces.KeyValueCache
	template interfaces.TemplateRenderer

	bunDB         *bun.DB
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	seedThemes   []themes.Theme
	extraFlavors []variants.Flavor
	contextFn    xhttp.ContextResolver

	settingsRepo themes.SettingsRepository
	viewRepo     views.Repository

	themeRegistry  *themes.Registry
	pluginRegistry *plugins.Registry
	flavorRegistry *variants.Registry

	themeSvc themes.Service
	viewSvc  views.Service
	cells    *plugins.CellRenderer
	renderer *rendering.Renderer
	editor   *editor.Editor
	api      *xhttp.API

	closers []func() error
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithKeyValueCache overrides the cache built from the cache config.
func WithKeyValueCache(kv interfaces.KeyValueCache) Option {
	return func(c *Container) {
		c.kv = kv
	}
}

// WithTemplate binds the host template renderer used by the snippet plugin.
func WithTemplate(tr interfaces.TemplateRenderer) Option {
	return func(c *Container) {
		c.template = tr
	}
}

// WithBunDB supplies an open database for the bun storage provider.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithRepositoryCache overrides the read-through cache of bun repositories.
func WithRepositoryCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithThemes registers themes ahead of the manifest directories.
func WithThemes(items ...themes.Theme) Option {
	return func(c *Container) {
		c.seedThemes = append(c.seedThemes, items...)
	}
}

// WithFlavors registers additional layout flavors after the configured ones.
func WithFlavors(flavors ...variants.Flavor) Option {
	return func(c *Container) {
		c.extraFlavors = append(c.extraFlavors, flavors...)
	}
}

// WithContextResolver overrides how the HTTP adapter builds render contexts.
func WithContextResolver(resolver xhttp.ContextResolver) Option {
	return func(c *Container) {
		c.contextFn = resolver
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	steps := []func() error{
		c.configureLoggerProvider,
		c.configureCache,
		c.configureStorage,
		c.configureThemes,
		c.configurePlugins,
		c.configureFlavors,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	c.configureServices()

	c.logger.Info("xtheme.container.ready",
		"themes", len(c.themeRegistry.List()),
		"plugins", len(c.pluginRegistry.List()),
		"flavors", len(c.flavorRegistry.List()),
		"storage", storageProvider(cfg),
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider == nil && c.Config.Features.Logger {
		switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
		case "gologger":
			provider, err := gologger.NewProvider(c.Config.Logging)
			if err != nil {
				return fmt.Errorf("di: configure go-logger: %w", err)
			}
			c.loggerProvider = provider
		default:
			level := console.ParseLevel(c.Config.Logging.Level)
			c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
		}
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "xtheme")
	return nil
}

func (c *Container) configureCache() error {
	if c.kv != nil || !c.Config.Cache.Enabled {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Cache.Provider)) {
	case "none":
		return nil
	case "redis":
		redisCfg := c.Config.Cache.Redis
		kv, err := cache.ConnectRedis(context.Background(), cache.RedisConfig{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
			Prefix:   redisPrefix(redisCfg.Prefix),
		})
		if err != nil {
			return err
		}
		c.kv = kv
		c.closers = append(c.closers, kv.Close)
	default:
		c.kv = cache.NewMemoryCache()
	}
	return nil
}

func (c *Container) configureStorage() error {
	if storageProvider(c.Config) != "bun" {
		c.settingsRepo = themes.NewMemorySettingsRepository()
		c.viewRepo = views.NewMemoryRepository()
		return nil
	}

	if c.bunDB == nil {
		db, err := OpenBunDB(c.Config.Storage)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.closers = append(c.closers, db.Close)
	}
	if err := EnsureSchema(context.Background(), c.bunDB); err != nil {
		return err
	}

	if !c.Config.Storage.RepositoryCache {
		c.settingsRepo = themes.NewBunSettingsRepository(c.bunDB)
		c.viewRepo = views.NewBunRepository(c.bunDB)
		return nil
	}
	if c.cacheService == nil {
		cacheCfg := repocache.DefaultConfig()
		cacheCfg.TTL = cacheTTL(c.Config)
		service, err := repocache.NewCacheService(cacheCfg)
		if err != nil {
			return fmt.Errorf("di: repository cache: %w", err)
		}
		c.cacheService = service
	}
	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	c.settingsRepo = themes.NewBunSettingsRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.viewRepo = views.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	return nil
}

func (c *Container) configureThemes() error {
	registry, err := themes.NewRegistry(c.seedThemes...)
	if err != nil {
		return err
	}
	for _, dir := range c.Config.Themes.ManifestDirs {
		if _, statErr := os.Stat(dir); errors.Is(statErr, fs.ErrNotExist) {
			c.logger.Warn("xtheme.themes.dir_missing", "dir", dir)
			continue
		}
		loaded, err := themes.LoadDir(registry, dir)
		if err != nil {
			return err
		}
		c.logger.Debug("xtheme.themes.loaded", "dir", dir, "count", len(loaded))
	}
	c.themeRegistry = registry
	return nil
}

func (c *Container) configurePlugins() error {
	registry := plugins.NewRegistry()
	opts := plugins.BuiltinOptions{CacheTTL: cacheTTL(c.Config)}
	if c.template != nil {
		opts.Templates = themes.NewTemplateEngine(c.themeRegistry, c.template)
	}
	if err := plugins.RegisterBuiltins(registry, opts); err != nil {
		return err
	}
	c.pluginRegistry = registry
	return nil
}

func (c *Container) configureFlavors() error {
	registry, err := variants.NewRegistry()
	if err != nil {
		return err
	}
	if !c.Config.Features.Variants {
		c.flavorRegistry = registry
		return nil
	}
	if c.Config.Variants.Builtins {
		registry = variants.DefaultRegistry()
	}

	logger := logging.ModuleLogger(c.loggerProvider, "xtheme.variants")
	for _, group := range c.Config.Variants.Groups {
		flavor, err := variants.NewGroupFlavor(group, "")
		if err != nil {
			return err
		}
		if err := registry.Register(flavor); err != nil {
			return err
		}
	}
	for _, def := range c.Config.Variants.Expressions {
		flavor, err := variants.NewExpressionFlavor(variants.ExpressionDefinition{
			ID:         def.ID,
			Name:       def.Name,
			HelpText:   def.HelpText,
			Expression: def.Expression,
		}, logger)
		if err != nil {
			return fmt.Errorf("di: flavor %q: %w", def.ID, err)
		}
		if err := registry.Register(flavor); err != nil {
			return err
		}
	}
	for _, flavor := range c.extraFlavors {
		if err := registry.Register(flavor); err != nil {
			return err
		}
	}
	c.flavorRegistry = registry
	return nil
}

func (c *Container) configureServices() {
	themeOpts := []themes.ServiceOption{
		themes.WithDefaultTheme(c.Config.Themes.Default),
		themes.WithLogger(logging.ThemesLogger(c.loggerProvider)),
	}
	viewOpts := []views.ServiceOption{
		views.WithLogger(logging.ViewsLogger(c.loggerProvider)),
	}
	cellOpts := []plugins.CellRendererOption{
		plugins.WithLogger(logging.PluginsLogger(c.loggerProvider)),
	}
	if c.kv != nil {
		themeOpts = append(themeOpts, themes.WithCache(c.kv, cacheTTL(c.Config)))
		viewOpts = append(viewOpts, views.WithCache(c.kv))
		if c.Config.Features.PluginCache {
			cellOpts = append(cellOpts, plugins.WithCache(c.kv))
		}
	}

	c.themeSvc = themes.NewService(c.themeRegistry, c.settingsRepo, themeOpts...)
	c.viewSvc = views.NewService(c.viewRepo, viewOpts...)
	c.cells = plugins.NewCellRenderer(c.pluginRegistry, cellOpts...)

	resolver := variants.NewResolver(c.flavorRegistry, logging.ModuleLogger(c.loggerProvider, "xtheme.variants"))
	c.renderer = rendering.NewRenderer(c.themeSvc, c.viewSvc, resolver, c.cells,
		rendering.WithLogger(logging.RenderingLogger(c.loggerProvider)))

	if c.Config.Features.Editor {
		c.editor = editor.New(c.pluginRegistry,
			editor.WithLogger(commands.CommandLogger(c.loggerProvider, "editor")),
			editor.WithTimeout(c.Config.Editor.CommandTimeout),
		)
	}

	contextFn := c.contextFn
	if contextFn == nil {
		contextFn = xhttp.HeaderContext(c.Config.HTTP.DefaultTenant)
	}
	c.api = xhttp.NewAPI(c.renderer, c.viewSvc, c.themeSvc, c.editor,
		xhttp.WithBasePath(c.Config.HTTP.BasePath),
		xhttp.WithContextResolver(contextFn),
		xhttp.WithLogger(logging.HTTPLogger(c.loggerProvider)),
	)
}

// OpenBunDB opens the configured SQL database and binds the matching bun dialect.
func OpenBunDB(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Dialect)) {
	case "postgres":
		sqlDB, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		sqlDB, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		db := bun.NewDB(sqlDB, sqlitedialect.New())
		db.SetMaxOpenConns(1)
		return db, nil
	}
}

// EnsureSchema creates the settings and view configuration tables when missing.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*themes.ThemeSettings)(nil),
		(*views.SavedViewConfig)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("di: create table %T: %w", model, err)
		}
	}
	return nil
}

// Close releases the connections opened by the container.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) Logger() interfaces.Logger { return c.logger }

func (c *Container) Cache() interfaces.KeyValueCache { return c.kv }

func (c *Container) BunDB() *bun.DB { return c.bunDB }

func (c *Container) ThemeRegistry() *themes.Registry { return c.themeRegistry }

func (c *Container) PluginRegistry() *plugins.Registry { return c.pluginRegistry }

func (c *Container) FlavorRegistry() *variants.Registry { return c.flavorRegistry }

func (c *Container) ThemeService() themes.Service { return c.themeSvc }

func (c *Container) ViewService() views.Service { return c.viewSvc }

func (c *Container) CellRenderer() *plugins.CellRenderer { return c.cells }

func (c *Container) Renderer() *rendering.Renderer { return c.renderer }

// Editor returns nil when the editor feature is disabled.
func (c *Container) Editor() *editor.Editor { return c.editor }

func (c *Container) API() *xhttp.API { return c.api }

func storageProvider(cfg runtimeconfig.Config) string {
	provider := strings.ToLower(strings.TrimSpace(cfg.Storage.Provider))
	if provider == "" {
		return "memory"
	}
	return provider
}

func cacheTTL(cfg runtimeconfig.Config) time.Duration {
	if cfg.Cache.DefaultTTL > 0 {
		return cfg.Cache.DefaultTTL
	}
	return time.Minute
}

func redisPrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || strings.HasSuffix(prefix, ":") {
		return prefix
	}
	return prefix + ":"
}
