package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/yairfalse/lookout/errs"
	"github.com/yairfalse/lookout/types"
)

// ec2PageSize is the DescribeInstances MaxResults cap.
const ec2PageSize = 1000

// ListComputeInstances lists every EC2 instance in one region, following
// pagination to exhaustion.
func (f *Fetcher) ListComputeInstances(ctx context.Context, creds types.Credentials, region types.Region) ([]types.RemoteInstance, error) {
	cfg, err := loadConfig(ctx, creds, region)
	if err != nil {
		return nil, errs.Wrap(errs.KindFetch, err, "cannot build client for %s", region.Wire())
	}
	client := f.newEC2(cfg)

	paginator := ec2.NewDescribeInstancesPaginator(client, &ec2.DescribeInstancesInput{
		MaxResults: aws.Int32(ec2PageSize),
	})

	var instances []types.RemoteInstance
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fetchError(region, err, "describe instances")
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				remote, err := buildComputeInstance(inst, region)
				if err != nil {
					return nil, err
				}
				instances = append(instances, remote)
			}
		}
	}

	return instances, nil
}

// buildComputeInstance normalizes one raw EC2 entry. A missing instance id
// is fatal; a missing Name tag falls back to the id.
func buildComputeInstance(inst ec2types.Instance, region types.Region) (types.RemoteInstance, error) {
	id := aws.ToString(inst.InstanceId)
	if id == "" {
		return types.RemoteInstance{}, errs.New(errs.KindFetch,
			"instance without id in %s", region.Wire())
	}

	name := id
	for _, tag := range inst.Tags {
		if aws.ToString(tag.Key) == "Name" && aws.ToString(tag.Value) != "" {
			name = aws.ToString(tag.Value)
			break
		}
	}

	var status string
	if inst.State != nil {
		status = string(inst.State.Name)
	}

	return types.RemoteInstance{
		Kind:     types.KindCompute,
		RemoteID: id,
		Name:     name,
		Status:   status,
		Region:   region,
	}, nil
}
