package uploader

import (
	"context"
	"io"
	"os"
	"strings"

	cfg "jqgen/internal/config"
	"jqgen/internal/util"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// GCSUploader stores workbooks in a Google Cloud Storage bucket.
type GCSUploader struct {
	cfg    cfg.GCSConfig
	client *storage.Client
}

// NewGCS builds the client from the storage.gcs section. Without a credentials
// file the default application credentials apply.
func NewGCS(c cfg.GCSConfig) (*GCSUploader, error) {
	if !c.Enabled {
		return &GCSUploader{cfg: c}, nil
	}
	var opts []option.ClientOption
	if file := strings.TrimSpace(c.CredentialsFile); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}
	client, err := storage.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create storage client")
	}
	return &GCSUploader{cfg: c, client: client}, nil
}

func (u *GCSUploader) Enabled() bool {
	return u.cfg.Enabled
}

// UploadDir stores the workbook at dir and returns its gs:// location.
func (u *GCSUploader) UploadDir(ctx context.Context, dir string) (string, error) {
	if !u.cfg.Enabled {
		return "", nil
	}
	if u.client == nil {
		return "", errors.New("gcs uploader is not initialized")
	}
	return uploadWorkbook(ctx, "gs", u.cfg.Bucket, u.cfg.Prefix, dir, u.put)
}

func (u *GCSUploader) put(ctx context.Context, f workbookFile) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer util.CloseWithErr(src, f.Key)
	w := u.client.Bucket(u.cfg.Bucket).Object(f.Key).NewWriter(ctx)
	w.ContentType = f.ContentType
	if _, err := io.Copy(w, src); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
