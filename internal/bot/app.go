package bot

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	corebootstrap "fieldbot/core/bootstrap"
	coretelegram "fieldbot/core/telegram"
	"fieldbot/core/telegram/commands"
	"fieldbot/core/telegram/router"
	tgsender "fieldbot/core/telegram/sender"
	"fieldbot/internal/archive"
	"fieldbot/internal/flow"
	"fieldbot/internal/mail"
	"fieldbot/internal/qr"
	"fieldbot/internal/report"

	tele "gopkg.in/telebot.v4"
)

// App is the assembled field-report bot.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	archive  *archive.Store
	sessions *flow.Store
	engine   *flow.Engine
	disp     *tgsender.Dispatcher
}

// Bootstrap initializes infrastructure and assembles the interview pipeline.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config provided")
	}

	res, err := corebootstrap.Run(corebootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	mailer, err := mail.NewSender(cfg.Mail)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}

	// A single worker keeps outbound prompts in conversation order.
	disp := tgsender.NewDispatcher(tgsender.Options{Workers: 1, QueueSize: 512})

	store := archive.NewStore(res.DB)
	fetcher := NewFetcher()
	sessions := flow.NewStore()
	engine := flow.NewEngine(
		flow.NewGraph(),
		sessions,
		NewOutbox(disp),
		report.NewDispatcher(fetcher, mailer, store),
		qr.NewDecoder(fetcher),
	)

	return &App{
		cfg:      cfg,
		db:       res.DB,
		archive:  store,
		sessions: sessions,
		engine:   engine,
		disp:     disp,
	}, nil
}

// InProgress reports whether the chat has an active interview. Together with
// ManagerHandler it satisfies the router's FSM contract.
func (a *App) InProgress(userID int64) bool {
	return a.sessions.InProgress(userID)
}

// ManagerHandler feeds the update of an in-progress interview to the engine.
func (a *App) ManagerHandler(c tele.Context) error {
	return a.handleUpdate(c)
}

// TelegramRunOptions wires registry, routes and middlewares for the runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Comenzar un nuevo reporte",
	})
	reg.RegisterCommand("/pendientes", commands.Command{
		Handler:     a.handlePending,
		Description: "Listar reportes con envío fallido",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/enviado", commands.Command{
		Handler:     a.handleMarkSent,
		Description: "Marcar un reporte fallido como enviado",
		AdminOnly:   true,
	})

	if err := reg.RegisterCallback(flowCallbackKey, a.handleCallback); err != nil {
		return coretelegram.RunOptions{}, err
	}
	reg.SetTextFallback(a.handleUpdate)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a, reg, router.TextOptions{
		UnknownText: a.handleUpdate,
	})...)
	routes = append(routes, router.PhotoRoutes(a, router.PhotoOptions{
		UnknownPhoto: a.handleUpdate,
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Dispatcher:  a.disp,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStop: func(context.Context, coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
