package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prajyots60/myskill-agenda/apps/api/echo"
	"github.com/prajyots60/myskill-agenda/core"
	"github.com/prajyots60/myskill-agenda/core/timeline"
	"github.com/prajyots60/myskill-agenda/services/email"
	"github.com/prajyots60/myskill-agenda/services/export"
	"github.com/prajyots60/myskill-agenda/services/logger"
	"github.com/prajyots60/myskill-agenda/services/notification"
	"github.com/prajyots60/myskill-agenda/services/push"
	"github.com/prajyots60/myskill-agenda/storage/database"
	"github.com/prajyots60/myskill-agenda/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "AGENDA-API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(std, err)

	var appLogger core.Logger
	if conf.Debug {
		appLogger = logsvc.NewConsoleLogger(std)
	} else {
		appLogger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up DB
	db, err := database.Open(conf)
	errAndDie(std, err)
	defer db.Close()
	errAndDie(std, database.Ping(db))

	repo := sqlxrepos.NewAgendaRepository(db)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, appLogger)
	}

	loc, err := time.LoadLocation(conf.Agenda.DefaultTimeZone)
	errAndDie(std, err)

	clock := core.NewClock()
	engine := timeline.NewEngine(repo, appLogger,
		timeline.WithClock(clock),
		timeline.WithLocation(loc),
		timeline.WithPageSize(conf.Agenda.PageSize),
		timeline.WithTimeout(conf.Agenda.RequestTimeout),
	)
	coordinator := timeline.NewCoordinator(engine, repo, exportsvc.NewService(conf))

	// live status updates
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var notifier timeline.Notifier
	if conf.Debug {
		notifier = notifsvc.NewConsoleNotifier(appLogger)
	} else {
		notifier = notifsvc.NewEmailNotifier(mailSvc, repo, conf, appLogger)
	}
	channel := pushsvc.NewWebsocketChannel(conf, appLogger)
	synchronizer := timeline.NewStatusSynchronizer(engine, channel, notifier, appLogger)
	go func() {
		if err := synchronizer.Run(ctx); err != nil && err != context.Canceled {
			appLogger.Error("status synchronizer stopped", err)
		}
	}()

	validate, translator := core.NewValidator()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Config:      conf,
			Logger:      appLogger,
			Engine:      engine,
			Coordinator: coordinator,
			Clock:       clock,
			Location:    loc,
			Validate:    validate,
			Translator:  translator,
			SignalShutdown: func() {
				shutdown <- syscall.SIGTERM
			},
		},
	)
	go app.Start()

	<-shutdown
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), conf.Server.ShutdownGracePeriod)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		appLogger.Error("graceful shutdown failed", err)
	}
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
