package envvar

import (
	"fmt"
	"os"
)

const (
	ENVIRONMENT                      = "ENVIRONMENT"
	LOG_LEVEL                        = "LOG_LEVEL"
	AWS_ACCESS_KEY_ID                = "AWS_ACCESS_KEY_ID"
	AWS_SECRET_ACCESS_KEY            = "AWS_SECRET_ACCESS_KEY"
	RABBITMQ_URL                     = "RABBITMQ_URL"
	RABBITMQ_QUEUE_NAME              = "RABBITMQ_QUEUE_NAME"
	GOOGLE_CLOUD_KEY                 = "GOOGLE_CLOUD_KEY"
	GOOGLE_CLOUD_STORAGE_BUCKET_NAME = "GOOGLE_CLOUD_STORAGE_BUCKET_NAME"
	DEMUCS_BIN_PATH                  = "DEMUCS_BIN_PATH"
	OPENL3_BIN_PATH                  = "OPENL3_BIN_PATH"
	WORKING_DIR_PATH                 = "WORKING_DIR_PATH"
	PIPELINE_CONFIG_PATH             = "PIPELINE_CONFIG_PATH"
	ALLOWED_FE_ORIGINS               = "ALLOWED_FE_ORIGINS"
)

func MustGet(key string) string {
	val, isSet := os.LookupEnv(key)
	if !isSet {
		panic(fmt.Sprintf("No env variable found for key %s", key))
	}

	if val == "" {
		panic(fmt.Sprintf("Env variable is empty for key %s", key))
	}

	return val
}

func GetOrDefault(key string, defaultVal string) string {
	val, isSet := os.LookupEnv(key)
	if !isSet || val == "" {
		return defaultVal
	}

	return val
}
