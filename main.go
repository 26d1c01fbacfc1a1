package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/book-server/api"
	"github.com/carson-networks/book-server/internal/auth"
	"github.com/carson-networks/book-server/internal/config"
	"github.com/carson-networks/book-server/internal/handlers/books"
	"github.com/carson-networks/book-server/internal/handlers/v1/status"
	"github.com/carson-networks/book-server/internal/logging"
	"github.com/carson-networks/book-server/internal/metrics"
	"github.com/carson-networks/book-server/internal/operator"
	"github.com/carson-networks/book-server/internal/service"
	"github.com/carson-networks/book-server/internal/session"
	"github.com/carson-networks/book-server/internal/storage"
	"github.com/carson-networks/book-server/internal/web"
)

func main() {
	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}

	logger := logging.SetupLogging(envConfig.LogLevel)
	logger.Info("book-server starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	gateway := storage.NewStorage(logger)

	delegator := operator.NewOperatorDelegator(gateway, envConfig.OperatorWorkers, logger)
	delegator.Start()
	defer delegator.Stop()

	svc := service.NewService(gateway, delegator, envConfig)

	renderer, err := web.NewRenderer()
	if err != nil {
		logger.WithError(err).Fatal("web.NewRenderer")
		return
	}

	checks := map[string]status.Check{}
	var sessions *session.Manager
	if envConfig.AuthMechanism == config.AuthPassthrough {
		var store session.Store
		switch envConfig.SessionType {
		case config.SessionRedis:
			redisStore := session.NewRedisStore(net.JoinHostPort(envConfig.RedisHost, envConfig.RedisPort), envConfig.RedisPassword)
			defer redisStore.Close()
			checks["sessions"] = redisStore.Ping
			store = redisStore
		default:
			store = session.NewMemoryStore()
		}
		sessions, err = session.NewManager(store, envConfig.SecretKey, session.DefaultTTL)
		if err != nil {
			logger.WithError(err).Fatal("session.NewManager")
			return
		}
	}
	authenticator := auth.NewAuthenticator(envConfig, sessions, gateway, renderer)

	httpRest := api.Rest{
		Logger:       logger,
		Port:         envConfig.Port,
		Metrics:      m,
		Service:      svc,
		Books:        books.NewHandler(svc, renderer, authenticator, m),
		Auth:         authenticator,
		StatusChecks: checks,
	}
	httpRest.Serve(ctx)
}
