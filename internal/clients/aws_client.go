package clients

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spacesedan/sentiboard/config"
)

var (
	awsCfg     aws.Config
	awsOnce    sync.Once
	awsInitErr error
)

func GetAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	awsOnce.Do(func() {
		slog.Info("[AWSClient] Initializing AWS Config...",
			slog.String("region", cfg.Region))
		loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			awsInitErr = fmt.Errorf("[AWSClient] failed to load AWS config: %w", err)
			return
		}
		awsCfg = loaded
		slog.Info("[AWSClient] AWS Config Initialized")
	})
	return awsCfg, awsInitErr
}

// GetDynamoDBClient builds a DynamoDB client, pointing it at cfg.Endpoint
// when one is set (DynamoDB Local in development).
func GetDynamoDBClient(ctx context.Context, cfg config.AWSConfig) (*dynamodb.Client, error) {
	base, err := GetAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(base, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}
