// Command sender requeues the start job of an existing run on the dev queue
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/veedubyou/timbre/src/shared/config/dev"
	"github.com/veedubyou/timbre/src/shared/config/envvar"
	"github.com/veedubyou/timbre/src/shared/lib/rabbitmq"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/job_message"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/start"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: sender RUN_ID")
		os.Exit(2)
	}

	rabbitURL := envvar.GetOrDefault(envvar.RABBITMQ_URL, dev.RabbitMQHost)
	queueName := envvar.GetOrDefault(envvar.RABBITMQ_QUEUE_NAME, dev.RabbitMQQueueName)

	publisher, err := rabbitmq.NewQueuePublisher(rabbitURL, queueName)
	if err != nil {
		panic(err)
	}
	defer publisher.Close()

	startJobParams := start.JobParams{
		RunIdentifier: job_message.RunIdentifier{
			RunID: os.Args[1],
		},
	}

	job, err := rabbitmq.JobPublishing(start.JobType, startJobParams)
	if err != nil {
		panic(err)
	}

	if err = publisher.Publish(context.Background(), job); err != nil {
		panic(err)
	}
}
