package main

import (
	"strings"

	"github.com/apex/log"
	"github.com/veedubyou/timbre/src/server/application"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/config/dev"
	"github.com/veedubyou/timbre/src/shared/config/envvar"
	"github.com/veedubyou/timbre/src/shared/config/prod"
	"github.com/veedubyou/timbre/src/shared/lib/env"
)

func main() {
	var appConfig application.Config

	switch env.Get() {
	case env.Production:
		commaSeparatedOrigins := envvar.MustGet(envvar.ALLOWED_FE_ORIGINS)
		allowedOrigins := strings.Split(commaSeparatedOrigins, ",")

		appConfig = application.Config{
			DynamoConfig: config.ProdDynamo{
				AccessKeyID:     envvar.MustGet(envvar.AWS_ACCESS_KEY_ID),
				SecretAccessKey: envvar.MustGet(envvar.AWS_SECRET_ACCESS_KEY),
				Region:          prod.DynamoDBRegion,
			},
			RabbitMQURL:        envvar.MustGet(envvar.RABBITMQ_URL),
			RabbitMQQueueName:  envvar.MustGet(envvar.RABBITMQ_QUEUE_NAME),
			CORSAllowedOrigins: allowedOrigins,
			Port:               ":5000",
			Log:                true,
		}
	case env.Development:
		appConfig = application.Config{
			DynamoConfig:       dev.DynamoConfig,
			RabbitMQURL:        dev.RabbitMQHost,
			RabbitMQQueueName:  dev.RabbitMQQueueName,
			CORSAllowedOrigins: []string{"*"},
			Port:               ":5000",
			Log:                true,
		}

	default:
		panic("Unexpected environment")
	}

	log.SetLevelFromString(envvar.GetOrDefault(envvar.LOG_LEVEL, "info"))

	app := application.NewApp(appConfig)
	if err := app.Start(); err != nil {
		panic(err)
	}
}
