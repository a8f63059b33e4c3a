package awsclient

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
)

func TestNewAppliesEndpointAndStaticCredentials(t *testing.T) {
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_CONFIG_FILE", t.TempDir()+"/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", t.TempDir()+"/credentials")

	clients, err := New(t.Context(), Settings{
		Region:          "sa-east-1",
		Endpoint:        "http://localhost:4566",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	if err != nil {
		t.Fatalf("build clients: %v", err)
	}

	sqsOptions := clients.SQS.Options()
	if aws.ToString(sqsOptions.BaseEndpoint) != "http://localhost:4566" {
		t.Fatalf("unexpected sqs endpoint: %q", aws.ToString(sqsOptions.BaseEndpoint))
	}
	if sqsOptions.Region != "sa-east-1" {
		t.Fatalf("unexpected sqs region: %s", sqsOptions.Region)
	}
	dynamoOptions := clients.DynamoDB.Options()
	if aws.ToString(dynamoOptions.BaseEndpoint) != "http://localhost:4566" {
		t.Fatalf("unexpected dynamodb endpoint: %q", aws.ToString(dynamoOptions.BaseEndpoint))
	}

	creds, err := sqsOptions.Credentials.Retrieve(t.Context())
	if err != nil {
		t.Fatalf("retrieve credentials: %v", err)
	}
	if creds.AccessKeyID != "test" || creds.SecretAccessKey != "test" {
		t.Fatalf("expected static credentials, got %s", creds.AccessKeyID)
	}
}
