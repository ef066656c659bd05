package uploader

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	cfg "jqgen/internal/config"
	"jqgen/internal/report"
	"jqgen/internal/util"

	"github.com/pkg/errors"
)

// Uploader publishes a finished workbook to remote storage.
type Uploader interface {
	Enabled() bool
	UploadDir(ctx context.Context, dir string) (string, error)
}

// NoopUploader is used when no storage backend is enabled.
type NoopUploader struct{}

func (n NoopUploader) Enabled() bool {
	return false
}

func (n NoopUploader) UploadDir(ctx context.Context, dir string) (string, error) {
	return "", nil
}

// New picks the enabled backend. GCS wins when both are enabled.
func New(storage cfg.StorageConfig) (Uploader, error) {
	if storage.GCS.Enabled {
		u, err := NewGCS(storage.GCS)
		if err != nil {
			return nil, errors.Wrap(err, "gcs client")
		}
		return u, nil
	}
	if storage.S3.Enabled {
		u, err := NewS3(storage.S3)
		if err != nil {
			return nil, errors.Wrap(err, "s3 client")
		}
		return u, nil
	}
	return NoopUploader{}, nil
}

// workbookFile is one file of a workbook and the object it becomes.
type workbookFile struct {
	Path        string
	Key         string
	ContentType string
}

// putFunc stores one workbook file in a bucket.
type putFunc func(ctx context.Context, f workbookFile) error

// workbookFiles lists every regular file under dir keyed as
// <prefix>/<workbook>/<relative path>. The summary comes last so a listed
// summary means the queries it counts are already stored.
func workbookFiles(dir, prefix string) ([]workbookFile, error) {
	root := path.Join(strings.Trim(prefix, "/"), filepath.Base(dir))
	var files []workbookFile
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, workbookFile{
			Path:        p,
			Key:         root + "/" + filepath.ToSlash(rel),
			ContentType: contentType(p),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list workbook %s", dir)
	}
	sort.Slice(files, func(i, j int) bool {
		si, sj := isSummary(dir, files[i].Path), isSummary(dir, files[j].Path)
		if si != sj {
			return sj
		}
		return files[i].Key < files[j].Key
	})
	return files, nil
}

func isSummary(dir, p string) bool {
	return p == filepath.Join(dir, report.SummaryName)
}

func contentType(p string) string {
	switch {
	case strings.HasSuffix(p, ".sql"):
		return "application/sql"
	case strings.HasSuffix(p, ".json"):
		return "application/json"
	case strings.HasSuffix(p, ".tar.zst"):
		return "application/zstd"
	default:
		return "application/octet-stream"
	}
}

// uploadWorkbook stores every workbook file with put and returns the workbook URL,
// e.g. s3://bucket/prefix/wb/.
func uploadWorkbook(ctx context.Context, scheme, bucket, prefix, dir string, put putFunc) (string, error) {
	files, err := workbookFiles(dir, prefix)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := put(ctx, f); err != nil {
			return "", errors.Wrapf(err, "upload %s", f.Key)
		}
		util.Detailf("uploaded %s (%s)", f.Key, f.ContentType)
	}
	root := path.Join(strings.Trim(prefix, "/"), filepath.Base(dir))
	return scheme + "://" + bucket + "/" + root + "/", nil
}
