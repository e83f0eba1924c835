package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/tagsentry/tagsentry/internal/domain/account"
)

const defaultRegion = "us-east-1"

// loadConfig builds an AWS SDK config from the account's stored credentials.
// Accounts without static keys fall back to the default credential chain.
func loadConfig(ctx context.Context, acct *account.Account) (aws.Config, error) {
	region := acct.Credentials.AWSDefaultRegion
	if region == "" {
		region = defaultRegion
	}

	if acct.Credentials.AWSAccessKeyID != "" && acct.Credentials.AWSSecretAccessKey != "" {
		return awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				acct.Credentials.AWSAccessKeyID, acct.Credentials.AWSSecretAccessKey, "")),
		)
	}
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
