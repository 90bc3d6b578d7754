package application

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/veedubyou/timbre/src/server/internal/run/gateway"
	"github.com/veedubyou/timbre/src/server/internal/run/usecase"
	"github.com/veedubyou/timbre/src/shared/config"
	dynamolib "github.com/veedubyou/timbre/src/shared/lib/dynamo"
	"github.com/veedubyou/timbre/src/shared/lib/rabbitmq"
	runstorage "github.com/veedubyou/timbre/src/shared/run/storage"
)

type HTTPMethod string

const (
	GET  HTTPMethod = "GET"
	POST HTTPMethod = "POST"
)

type App struct {
	echo      *echo.Echo
	port      string
	publisher *rabbitmq.QueuePublisher
}

type Config struct {
	DynamoConfig       config.Dynamo
	RabbitMQURL        string
	RabbitMQQueueName  string
	CORSAllowedOrigins []string
	Port               string
	Log                bool
}

func NewApp(config Config) App {
	e := echo.New()
	e.HideBanner = true

	if config.Log {
		e.Use(middleware.Logger())
	}

	corsMiddleware := makeCorsMiddleware(config)

	handleRoute := func(method HTTPMethod, path string, handlerFunc echo.HandlerFunc) {
		params := func() (string, echo.HandlerFunc, echo.MiddlewareFunc) {
			return path, handlerFunc, corsMiddleware
		}

		e.OPTIONS(params())

		switch method {
		case GET:
			e.GET(params())
		case POST:
			e.POST(params())
		default:
			panic("unhandled http method!")
		}
	}

	dynamoDB := makeDynamoDB(config.DynamoConfig)
	rabbitmqPublisher := makeRabbitMQPublisher(config)
	runGateway := makeRunGateway(dynamoDB, rabbitmqPublisher)

	// health check
	handleRoute(GET, "/health-check", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// run routes
	handleRoute(POST, "/runs", runGateway.CreateRun)
	handleRoute(GET, "/runs/:id", func(c echo.Context) error {
		runID := c.Param("id")
		return runGateway.GetRun(c, runID)
	})

	return App{
		echo:      e,
		port:      config.Port,
		publisher: rabbitmqPublisher,
	}
}

func (a *App) Start() error {
	err := a.echo.Start(a.port)
	if err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "Couldn't start echo server")
	}

	return nil
}

func (a *App) Stop() error {
	err := a.echo.Close()
	if err != nil {
		return errors.Wrap(err, "Failed to stop echo server")
	}

	if err := a.publisher.Close(); err != nil {
		return errors.Wrap(err, "Failed to close rabbitMQ publisher")
	}

	return nil
}

func makeRabbitMQPublisher(config Config) *rabbitmq.QueuePublisher {
	publisher, err := rabbitmq.NewQueuePublisher(config.RabbitMQURL, config.RabbitMQQueueName)
	if err != nil {
		panic(errors.Wrap(err, "Failed to create rabbitMQ publisher"))
	}

	return publisher
}

func makeDynamoDB(dynamoConfig config.Dynamo) dynamolib.DynamoDBWrapper {
	db, err := dynamolib.NewDynamoDB(dynamoConfig)
	if err != nil {
		panic(errors.Wrap(err, "Failed to create dynamoDB client"))
	}

	return db
}

func makeRunGateway(dynamoDB dynamolib.DynamoDBWrapper, publisher rabbitmq.Publisher) rungateway.Gateway {
	runDB := runstorage.NewDB(dynamoDB)
	runUsecase := runusecase.NewUsecase(runDB, publisher)
	return rungateway.NewGateway(runUsecase)
}

func makeCorsMiddleware(config Config) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: config.CORSAllowedOrigins,
		AllowHeaders: []string{echo.HeaderContentType},
	})
}
