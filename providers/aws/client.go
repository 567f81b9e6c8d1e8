// Package aws talks to the provider APIs: per-region inventory listing and
// CloudWatch metric data. Clients are built per call from an account's
// resolved credentials; nothing here touches ambient AWS config.
package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/smithy-go"

	"github.com/yairfalse/lookout/errs"
	"github.com/yairfalse/lookout/types"
)

// EC2API is the slice of the EC2 client the compute lister needs.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// RDSAPI is the slice of the RDS client the database lister needs.
type RDSAPI interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

// CloudWatchAPI is the slice of the CloudWatch client the metric fetcher needs.
type CloudWatchAPI interface {
	GetMetricData(ctx context.Context, params *cloudwatch.GetMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricDataOutput, error)
}

// Fetcher builds provider clients per (credentials, region) call. The
// constructor funcs are swappable for tests.
type Fetcher struct {
	newEC2        func(cfg aws.Config) EC2API
	newRDS        func(cfg aws.Config) RDSAPI
	newCloudWatch func(cfg aws.Config) CloudWatchAPI
}

// NewFetcher creates a fetcher backed by the real SDK clients.
func NewFetcher() *Fetcher {
	return &Fetcher{
		newEC2:        func(cfg aws.Config) EC2API { return ec2.NewFromConfig(cfg) },
		newRDS:        func(cfg aws.Config) RDSAPI { return rds.NewFromConfig(cfg) },
		newCloudWatch: func(cfg aws.Config) CloudWatchAPI { return cloudwatch.NewFromConfig(cfg) },
	}
}

// loadConfig builds per-call AWS config with the account's static
// credentials, targeting the region's wire form.
func loadConfig(ctx context.Context, creds types.Credentials, region types.Region) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region.Wire()),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.Secret, ""),
		),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// fetchError classifies a provider call failure, keeping the region and
// the provider's error code visible to the caller.
func fetchError(region types.Region, err error, what string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return errs.Wrap(errs.KindFetch, err, "%s in %s failed (%s)", what, region.Wire(), apiErr.ErrorCode())
	}
	return errs.Wrap(errs.KindFetch, err, "%s in %s failed", what, region.Wire())
}
