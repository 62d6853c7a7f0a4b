// Package bot wires the search, session, paging, download, and history
// components into Telegram command and callback handlers.
package bot

import (
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/soundpull/soundpull/core/config"
	coretelegram "github.com/soundpull/soundpull/core/telegram"
	"github.com/soundpull/soundpull/core/telegram/helpers"
	"github.com/soundpull/soundpull/core/telegram/router"
	"github.com/soundpull/soundpull/internal/download"
	"github.com/soundpull/soundpull/internal/history"
	"github.com/soundpull/soundpull/internal/provider"
	"github.com/soundpull/soundpull/internal/session"
)

// App is the assembled bot application.
type App struct {
	cfg   *coreconfig.Config
	store *session.Store
	prov  provider.Provider
	ctrl  *download.Controller
	hist  *history.Store
}

// New assembles the application from its infrastructure pieces. hist may
// be nil when history is disabled.
func New(cfg *coreconfig.Config, prov provider.Provider, hist *history.Store) *App {
	ctrl := download.NewController(prov, download.Config{
		MaxBytes:        cfg.Download.MaxBytes(),
		Checkpoints:     cfg.Download.ProgressCheckpoints,
		CheckpointDelay: cfg.Download.ProgressDelay(),
	}, cfg.Download.Dir)

	return &App{
		cfg:   cfg,
		store: session.NewStore(cfg.Search.TracksPerPage),
		prov:  prov,
		ctrl:  ctrl,
		hist:  hist,
	}
}

// CoreConfig exposes the embedded configuration to the runner.
func (a *App) CoreConfig() *coreconfig.Config { return a.cfg }

// TelegramRunOptions builds the full bot runtime: registry, middleware
// chain, and routes.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()

	a.registerCommands(reg)
	if err := a.registerCallbacks(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}
	reg.SetTextFallback(a.handleSearch)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
		OnAdminReject: func(c tele.Context) error {
			return helpers.SendText(c, "This command is for the bot admin only.")
		},
	})
	routes = append(routes,
		router.CallbackRoute(reg, router.CallbackOptions{}),
		router.TextRoute(reg, router.TextOptions{}),
	)

	middlewares := coretelegram.DefaultMiddlewares(a.cfg, func(c tele.Context) error {
		return helpers.SendText(c, msgRateLimited)
	})

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: middlewares,
		Routes:      routes,
	}, nil
}

func (a *App) pageSize() int {
	return a.cfg.Search.TracksPerPage
}
