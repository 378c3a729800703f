// Package ddb provides DynamoDB client construction.
package ddb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/guregu/dynamo/v2"
)

// localCredential is used against a custom endpoint when no keys are set.
const localCredential = "local"

// Config contains DynamoDB connection configuration.
type Config struct {
	Region          string
	Endpoint        string // e.g. http://localhost:8000 for DynamoDB Local
	AccessKeyID     string
	SecretAccessKey string
}

// Connect builds a dynamo.DB from the default AWS credential chain, with
// overrides for region, static keys and a custom endpoint.
func Connect(ctx context.Context, cfg Config) (*dynamo.DB, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}

	switch {
	case cfg.AccessKeyID != "":
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	case cfg.Endpoint != "":
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(localCredential, localCredential, localCredential),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws configuration: %w", err)
	}

	var clientOpts []func(*dynamodb.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	slog.Info("dynamodb client configured", "region", awsCfg.Region, "endpoint", cfg.Endpoint)
	return dynamo.New(awsCfg, clientOpts...), nil
}
