package dynamolib

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/cockroachdb/errors"
	"github.com/guregu/dynamo"
	"github.com/veedubyou/timbre/src/shared/config"
)

// empty maps and strings are legitimate run values (no artifacts yet, no
// debug log), so they are written as-is instead of being nulled out
var encoder = dynamodbattribute.NewEncoder(func(e *dynamodbattribute.Encoder) {
	e.MarshalOptions.EnableEmptyCollections = true
	e.NullEmptyString = false
	e.NullEmptyByteSlice = false
})

type itemMap map[string]any

func (i itemMap) MarshalDynamo() (*dynamodb.AttributeValue, error) {
	var fields map[string]any = i
	return encoder.Encode(fields)
}

// NewDynamoDB builds the wrapper for either real DynamoDB or dynamodb-local
func NewDynamoDB(dynamoConfig config.Dynamo) (DynamoDBWrapper, error) {
	dbSession, err := session.NewSession()
	if err != nil {
		return DynamoDBWrapper{}, errors.Wrap(err, "Failed to create AWS session")
	}

	var dbConfig *aws.Config

	switch t := dynamoConfig.(type) {
	case config.ProdDynamo:
		dbConfig = aws.NewConfig().
			WithCredentials(credentials.NewStaticCredentials(t.AccessKeyID, t.SecretAccessKey, "")).
			WithRegion(t.Region)

	case config.LocalDynamo:
		dbConfig = aws.NewConfig().
			WithCredentials(credentials.NewStaticCredentials(t.AccessKeyID, t.SecretAccessKey, "")).
			WithRegion(t.Region).
			WithEndpoint(t.Host)

	default:
		return DynamoDBWrapper{}, errors.Newf("Unexpected dynamo config type %T", dynamoConfig)
	}

	return NewDynamoDBWrapper(dynamo.New(dbSession, dbConfig)), nil
}

func NewDynamoDBWrapper(db *dynamo.DB) DynamoDBWrapper {
	return DynamoDBWrapper{DB: db}
}

type DynamoDBWrapper struct {
	*dynamo.DB
}

// DynamoTableWrapper writes generic maps with the encoder above, everything
// else goes straight to the embedded table
type DynamoTableWrapper struct {
	dynamo.Table
}

func (d DynamoDBWrapper) Table(tableName string) DynamoTableWrapper {
	return DynamoTableWrapper{
		Table: d.DB.Table(tableName),
	}
}

func (d DynamoTableWrapper) Put(item map[string]any) *dynamo.Put {
	return d.Table.Put(itemMap(item))
}
