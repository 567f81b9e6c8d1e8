package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/yairfalse/lookout/errs"
	"github.com/yairfalse/lookout/types"
)

// rdsPageSize is the DescribeDBInstances MaxRecords cap.
const rdsPageSize = 100

// ListDatabaseInstances lists every RDS instance in one region, following
// pagination to exhaustion.
func (f *Fetcher) ListDatabaseInstances(ctx context.Context, creds types.Credentials, region types.Region) ([]types.RemoteInstance, error) {
	cfg, err := loadConfig(ctx, creds, region)
	if err != nil {
		return nil, errs.Wrap(errs.KindFetch, err, "cannot build client for %s", region.Wire())
	}
	client := f.newRDS(cfg)

	paginator := rds.NewDescribeDBInstancesPaginator(client, &rds.DescribeDBInstancesInput{
		MaxRecords: aws.Int32(rdsPageSize),
	})

	var instances []types.RemoteInstance
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fetchError(region, err, "describe db instances")
		}
		for _, db := range page.DBInstances {
			remote, err := buildDatabaseInstance(db, region)
			if err != nil {
				return nil, err
			}
			instances = append(instances, remote)
		}
	}

	return instances, nil
}

// buildDatabaseInstance normalizes one raw RDS entry.
func buildDatabaseInstance(db rdstypes.DBInstance, region types.Region) (types.RemoteInstance, error) {
	id := aws.ToString(db.DBInstanceIdentifier)
	if id == "" {
		return types.RemoteInstance{}, errs.New(errs.KindFetch,
			"db instance without identifier in %s", region.Wire())
	}

	name := id
	for _, tag := range db.TagList {
		if aws.ToString(tag.Key) == "Name" && aws.ToString(tag.Value) != "" {
			name = aws.ToString(tag.Value)
			break
		}
	}

	return types.RemoteInstance{
		Kind:     types.KindDatabase,
		RemoteID: id,
		Name:     name,
		Status:   aws.ToString(db.DBInstanceStatus),
		Region:   region,
	}, nil
}
