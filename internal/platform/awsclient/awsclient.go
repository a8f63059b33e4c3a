package awsclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Settings selects the AWS target. An empty Endpoint uses the public
// regional endpoint; empty keys use the default credential chain.
type Settings struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Clients holds the AWS clients shared by the store and queue adapters.
type Clients struct {
	DynamoDB *dynamodb.Client
	SQS      *sqs.Client
}

func LoadConfig(ctx context.Context, settings Settings) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region := strings.TrimSpace(settings.Region); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if settings.AccessKeyID != "" && settings.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(settings.AccessKeyID, settings.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

func New(ctx context.Context, settings Settings) (Clients, error) {
	cfg, err := LoadConfig(ctx, settings)
	if err != nil {
		return Clients{}, err
	}
	endpoint := strings.TrimSpace(settings.Endpoint)
	return Clients{
		DynamoDB: dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		}),
		SQS: sqs.NewFromConfig(cfg, func(o *sqs.Options) {
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		}),
	}, nil
}
