package config

// Dynamo is either a ProdDynamo (real AWS) or a LocalDynamo (dynamodb-local)
type Dynamo interface {
	DynamoConfig()
}

var _ Dynamo = ProdDynamo{}
var _ Dynamo = LocalDynamo{}

type ProdDynamo struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

func (ProdDynamo) DynamoConfig() {}

type LocalDynamo struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Host            string
}

func (LocalDynamo) DynamoConfig() {}

// CloudStorage describes where pipeline artifacts get mirrored to
type CloudStorage interface {
	GetStorageHost() string
	GetBucket() string
}

var _ CloudStorage = ProdCloudStorage{}
var _ CloudStorage = LocalCloudStorage{}

type ProdCloudStorage struct {
	StorageHost string
	SecretKey   string
	BucketName  string
}

func (p ProdCloudStorage) GetStorageHost() string { return p.StorageHost }
func (p ProdCloudStorage) GetBucket() string      { return p.BucketName }

// LocalCloudStorage points at a fake GCS server, e.g. fsouza/fake-gcs-server
type LocalCloudStorage struct {
	StorageHost  string
	HostEndpoint string
	BucketName   string
}

func (l LocalCloudStorage) GetStorageHost() string { return l.StorageHost }
func (l LocalCloudStorage) GetBucket() string      { return l.BucketName }

type RabbitMQ struct {
	URL       string
	QueueName string
}
