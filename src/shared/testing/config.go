package testing

import (
	server_app "github.com/veedubyou/timbre/src/server/application"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/config/dev"
	"github.com/veedubyou/timbre/src/shared/lib/executor"
	worker_app "github.com/veedubyou/timbre/src/worker/application"
)

func ServerConfig(dbRegion string) server_app.Config {
	return server_app.Config{
		DynamoConfig:       DynamoConfig(dbRegion),
		RabbitMQURL:        RabbitMQHost,
		RabbitMQQueueName:  RabbitMQQueueName,
		CORSAllowedOrigins: []string{"*"},
		Port:               ServerPort,
		Log:                false,
	}
}

// WorkerConfig runs the models through binaryExecutor, installed under
// DemucsBinName and OpenL3BinName
func WorkerConfig(dbRegion string, cloudStorageConfig config.CloudStorage, binaryExecutor executor.Executor, workingDir string) worker_app.Config {
	return worker_app.Config{
		RabbitMQURL:        RabbitMQHost,
		RabbitMQQueueName:  RabbitMQQueueName,
		DynamoConfig:       DynamoConfig(dbRegion),
		CloudStorageConfig: cloudStorageConfig,
		DemucsBinPath:      DemucsBinName,
		OpenL3BinPath:      OpenL3BinName,
		WorkingDirPath:     workingDir,
		Executor:           binaryExecutor,
	}
}

const (
	DemucsBinName = "demucs"
	OpenL3BinName = "openl3"
)

// DynamoDB
const (
	DynamoAccessKeyID     = dev.DynamoAccessKeyID
	DynamoSecretAccessKey = dev.DynamoSecretAccessKey
	DynamoDBHost          = dev.DynamoDBHost
)

func DynamoConfig(region string) config.LocalDynamo {
	return config.LocalDynamo{
		AccessKeyID:     DynamoAccessKeyID,
		SecretAccessKey: DynamoSecretAccessKey,
		Region:          region,
		Host:            DynamoDBHost,
	}
}

// RabbitMQ
const (
	RabbitMQHost      = dev.RabbitMQHost
	RabbitMQQueueName = "timbre-pipeline-test"
)

// Server
const (
	ServerPort = ":5010"
)
