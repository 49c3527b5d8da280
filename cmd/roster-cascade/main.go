// roster-cascade is the Lambda consumer of the table's DynamoDB stream.
// It deletes an event's registrations and waitlist entries after the event
// metadata item is removed.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/caarlos0/env/v11"

	"github.com/jacentio/roster/store"
	"github.com/jacentio/roster/stream"
)

type config struct {
	TableName string `env:"ROSTER_TABLE" envDefault:"roster_events"`
	IndexName string `env:"ROSTER_INDEX" envDefault:"GSI1"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logger.Error("parse config", "error", err)
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Error("load aws config", "error", err)
		os.Exit(1)
	}

	s := store.NewDynamo(dynamodb.NewFromConfig(awsCfg), store.Config{
		TableName: cfg.TableName,
		IndexName: cfg.IndexName,
	})
	handler := stream.NewHandler(s, nil, logger)

	lambda.Start(handler.HandleCascadeDelete)
}
