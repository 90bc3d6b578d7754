package application

import (
	"context"
	"os"

	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	dynamolib "github.com/veedubyou/timbre/src/shared/lib/dynamo"
	"github.com/veedubyou/timbre/src/shared/lib/executor"
	"github.com/veedubyou/timbre/src/shared/lib/rabbitmq"
	"github.com/veedubyou/timbre/src/shared/run/entity"
	runstorage "github.com/veedubyou/timbre/src/shared/run/storage"
	filestore "github.com/veedubyou/timbre/src/worker/internal/application/cloud_storage/store"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/artifact"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/complete"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/extract_embedding"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/extract_mfcc"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/job_router"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/postprocess"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/preprocess"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/separate"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/start"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/toolchain"
	"github.com/veedubyou/timbre/src/worker/internal/application/worker"
	"github.com/veedubyou/timbre/src/worker/internal/lib/storagepath"
	"google.golang.org/api/option"
)

func must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}

	return t
}

type App struct {
	worker    *worker.QueueWorker
	publisher *rabbitmq.QueuePublisher
}

type Config struct {
	RabbitMQURL        string
	RabbitMQQueueName  string
	DynamoConfig       config.Dynamo
	CloudStorageConfig config.CloudStorage

	DemucsBinPath  string
	OpenL3BinPath  string
	WorkingDirPath string

	// Executor runs the model binaries, the host's when nil
	Executor executor.Executor
}

func NewApp(config Config) App {
	consumerConn := must(amqp091.Dial(config.RabbitMQURL))
	publisher := must(rabbitmq.NewQueuePublisher(config.RabbitMQURL, config.RabbitMQQueueName))

	return App{
		worker:    newWorker(config, consumerConn, publisher),
		publisher: publisher,
	}
}

// Start blocks for as long as the worker is consuming
func (a *App) Start(ctx context.Context) error {
	err := a.worker.Start(ctx)
	if err != nil {
		return cerr.Wrap(err).Error("Failed to start worker")
	}

	return nil
}

func (a *App) Stop() {
	a.worker.Stop()
	if err := a.publisher.Close(); err != nil {
		cerr.Log(cerr.Wrap(err).Error("Failed to close the publisher"))
	}
}

func newWorker(config Config, consumerConn *amqp091.Connection, publisher rabbitmq.Publisher) *worker.QueueWorker {
	runStore := runstorage.NewDB(must(dynamolib.NewDynamoDB(config.DynamoConfig)))

	return must(worker.NewQueueWorkerFromConnection(
		consumerConn,
		config.RabbitMQQueueName,
		newJobRouter(config, runStore, publisher)))
}

func newGoogleFileStore(cloudStorageConfig config.CloudStorage) filestore.GoogleFileStore {
	switch t := cloudStorageConfig.(type) {
	case config.ProdCloudStorage:
		return must(filestore.NewGoogleFileStore(
			t.StorageHost,
			option.WithCredentialsJSON([]byte(t.SecretKey)),
		))

	case config.LocalCloudStorage:
		return must(filestore.NewGoogleFileStore(
			t.StorageHost,
			option.WithEndpoint(t.HostEndpoint),
			option.WithAPIKey("fake_api_key"),
		))

	default:
		panic("Unrecognized cloud storage config")
	}
}

func newToolchain(config Config) toolchain.Toolchain {
	if err := os.MkdirAll(config.WorkingDirPath, os.ModePerm); err != nil {
		panic(err)
	}

	binaryExecutor := config.Executor
	if binaryExecutor == nil {
		binaryExecutor = executor.BinaryFileExecutor{}
	}

	return toolchain.Toolchain{
		DemucsBinPath:  config.DemucsBinPath,
		OpenL3BinPath:  config.OpenL3BinPath,
		WorkingDirPath: config.WorkingDirPath,
		Executor:       binaryExecutor,
	}
}

func newJobRouter(config Config, runStore runentity.Store, publisher rabbitmq.Publisher) job_router.JobRouter {
	pathGenerator := storagepath.Generator{
		Host:   config.CloudStorageConfig.GetStorageHost(),
		Bucket: config.CloudStorageConfig.GetBucket(),
	}

	uploader := artifact.NewUploader(newGoogleFileStore(config.CloudStorageConfig), pathGenerator)
	tools := newToolchain(config)

	return job_router.NewJobRouter(
		runStore,
		publisher,
		start.NewJobHandler(runStore),
		preprocess.NewJobHandler(runStore),
		separate.NewJobHandler(runStore, tools),
		postprocess.NewJobHandler(runStore),
		extract_mfcc.NewJobHandler(runStore, uploader),
		extract_embedding.NewJobHandler(runStore, tools, uploader),
		complete.NewJobHandler(runStore),
	)
}
