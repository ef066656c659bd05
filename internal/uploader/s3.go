package uploader

import (
	"context"
	"os"

	cfg "jqgen/internal/config"
	"jqgen/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

// S3Uploader stores workbooks in an S3 bucket or an S3-compatible endpoint.
type S3Uploader struct {
	cfg    cfg.S3Config
	client *s3.Client
}

// NewS3 builds the client from the storage.s3 section.
func NewS3(c cfg.S3Config) (*S3Uploader, error) {
	if !c.Enabled {
		return &S3Uploader{cfg: c}, nil
	}
	var opts []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}
	if c.AccessKeyID != "" && c.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken)))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = c.UsePathStyle
	})
	return &S3Uploader{cfg: c, client: client}, nil
}

func (u *S3Uploader) Enabled() bool {
	return u.cfg.Enabled
}

// UploadDir stores the workbook at dir and returns its s3:// location.
func (u *S3Uploader) UploadDir(ctx context.Context, dir string) (string, error) {
	if !u.cfg.Enabled {
		return "", nil
	}
	if u.client == nil {
		return "", errors.New("s3 uploader is not initialized")
	}
	return uploadWorkbook(ctx, "s3", u.cfg.Bucket, u.cfg.Prefix, dir, u.put)
}

func (u *S3Uploader) put(ctx context.Context, f workbookFile) error {
	body, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer util.CloseWithErr(body, f.Key)
	info, err := body.Stat()
	if err != nil {
		return err
	}
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(f.Key),
		Body:          body,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(f.ContentType),
	})
	return err
}
