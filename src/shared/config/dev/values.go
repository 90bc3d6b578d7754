package dev

import "github.com/veedubyou/timbre/src/shared/config"

// DynamoDB
const (
	DynamoAccessKeyID     = "local"
	DynamoSecretAccessKey = "local"
	DynamoDBHost          = "http://localhost:8000"
	DynamoDBRegion        = "localhost"
)

var DynamoConfig = config.LocalDynamo{
	AccessKeyID:     DynamoAccessKeyID,
	SecretAccessKey: DynamoSecretAccessKey,
	Region:          DynamoDBRegion,
	Host:            DynamoDBHost,
}

// RabbitMQ
const (
	RabbitMQHost      = "amqp://localhost:5672"
	RabbitMQQueueName = "timbre-pipeline-dev"
)

// Cloud storage, a fake-gcs-server container
const (
	CloudStorageHost     = "http://localhost:4443/storage/v1/b"
	CloudStorageEndpoint = "http://localhost:4443/storage/v1/"
	CloudStorageBucket   = "timbre-artifacts-dev"
)

var CloudStorageConfig = config.LocalCloudStorage{
	StorageHost:  CloudStorageHost,
	HostEndpoint: CloudStorageEndpoint,
	BucketName:   CloudStorageBucket,
}
