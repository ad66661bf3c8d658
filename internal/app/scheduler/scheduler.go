// Package scheduler содержит приложение планировщика сроков членства.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/wahs-congress/internal/config"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
	"github.com/magabrotheeeer/wahs-congress/internal/notify"
	schedulerservice "github.com/magabrotheeeer/wahs-congress/internal/services/scheduler"
	"github.com/magabrotheeeer/wahs-congress/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	dispatcher       *notify.Dispatcher
	db               *repository.Storage
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
	spec             string
	loc              *time.Location
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
// Расписание интерпретируется в часовом поясе цен конгресса.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, err
	}

	dispatcher := notify.NewAMQP(logger, ch, cfg.PublishTimeout)

	return &App{
		schedulerService: schedulerservice.NewSchedulerService(db, dispatcher, logger, cfg.ReminderWindow),
		dispatcher:       dispatcher,
		db:               db,
		conn:             conn,
		ch:               ch,
		logger:           logger,
		spec:             cfg.Spec,
		loc:              loc,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run выполняет один проход сразу, затем по расписанию до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Sweep(ctx)

	c, err := a.schedulerService.Start(ctx, a.spec, a.loc)
	if err != nil {
		return err
	}

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")
	<-c.Stop().Done()
	a.dispatcher.Wait()

	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	closeResources(a.ch, a.conn, a.logger)
	return nil
}
