package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/config/dev"
	"github.com/veedubyou/timbre/src/shared/config/envvar"
	"github.com/veedubyou/timbre/src/shared/config/local"
	"github.com/veedubyou/timbre/src/shared/config/prod"
	"github.com/veedubyou/timbre/src/shared/lib/env"
	"github.com/veedubyou/timbre/src/worker/application"
)

func main() {
	var appConfig application.Config

	switch env.Get() {
	case env.Production:
		log.SetHandler(json.New(os.Stderr))
		appConfig = application.Config{
			DynamoConfig: config.ProdDynamo{
				AccessKeyID:     envvar.MustGet(envvar.AWS_ACCESS_KEY_ID),
				SecretAccessKey: envvar.MustGet(envvar.AWS_SECRET_ACCESS_KEY),
				Region:          prod.DynamoDBRegion,
			},
			CloudStorageConfig: config.ProdCloudStorage{
				StorageHost: prod.GOOGLE_STORAGE_HOST,
				SecretKey:   envvar.MustGet(envvar.GOOGLE_CLOUD_KEY),
				BucketName:  envvar.MustGet(envvar.GOOGLE_CLOUD_STORAGE_BUCKET_NAME),
			},
			RabbitMQURL:       envvar.MustGet(envvar.RABBITMQ_URL),
			RabbitMQQueueName: envvar.MustGet(envvar.RABBITMQ_QUEUE_NAME),
			DemucsBinPath:     envvar.MustGet(envvar.DEMUCS_BIN_PATH),
			OpenL3BinPath:     envvar.MustGet(envvar.OPENL3_BIN_PATH),
			WorkingDirPath:    envvar.MustGet(envvar.WORKING_DIR_PATH),
		}

	case env.Development:
		log.SetHandler(text.New(os.Stderr))
		appConfig = application.Config{
			DynamoConfig:       dev.DynamoConfig,
			CloudStorageConfig: dev.CloudStorageConfig,
			RabbitMQURL:        dev.RabbitMQHost,
			RabbitMQQueueName:  dev.RabbitMQQueueName,
			DemucsBinPath:      envvar.GetOrDefault(envvar.DEMUCS_BIN_PATH, config.DemucsPath()),
			OpenL3BinPath:      envvar.GetOrDefault(envvar.OPENL3_BIN_PATH, config.OpenL3Path()),
			WorkingDirPath:     local.WorkingDir("worker"),
		}

	default:
		panic("Unexpected environment")
	}

	log.SetLevelFromString(envvar.GetOrDefault(envvar.LOG_LEVEL, "info"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := application.NewApp(appConfig)
	go func() {
		<-ctx.Done()
		log.Info("Shutting down worker")
		app.Stop()
	}()

	if err := app.Start(ctx); err != nil {
		panic(err)
	}
}
