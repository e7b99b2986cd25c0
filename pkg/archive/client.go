package archive

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ClientConfig configures NewClient.
type ClientConfig struct {
	// Region is the AWS region (e.g. "us-east-1"). Empty uses the region
	// from the environment or shared config.
	Region string

	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	// Setting it also enables path-style addressing.
	Endpoint string
}

// NewClient builds an S3 client with the SDK's default credential chain
// (environment, shared profile, SSO, instance metadata).
func NewClient(ctx context.Context, cfg ClientConfig) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, clientOptions(cfg)...), nil
}

func clientOptions(cfg ClientConfig) []func(*s3.Options) {
	var opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return opts
}
