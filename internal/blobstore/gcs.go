package blobstore

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"qrlink/entity"
	"qrlink/internal/config"
	"qrlink/lib/sl"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const (
	contentTypePNG = "image/png"
	publicHost     = "https://storage.googleapis.com"
)

// GCS uploads generated images to a Google Cloud Storage bucket
type GCS struct {
	client     *storage.Client
	bucket     string
	prefix     string
	makePublic bool
	log        *slog.Logger
}

// NewGCS returns nil when storage is disabled; Upload on a nil client reports degraded storage
func NewGCS(ctx context.Context, conf config.StorageConfig, log *slog.Logger) (*GCS, error) {
	if !conf.Enabled {
		return nil, nil
	}
	var opts []option.ClientOption
	if conf.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	g := &GCS{
		client:     client,
		bucket:     conf.Bucket,
		prefix:     conf.Prefix,
		makePublic: conf.MakePublic,
		log:        log.With(sl.Module("blobstore")),
	}
	g.log.Info("storage client ready",
		slog.String("bucket", conf.Bucket),
		sl.Secret("credentials", conf.CredentialsFile),
	)
	return g, nil
}

// ObjectPath location of the image of a code inside the bucket
func (g *GCS) ObjectPath(code string) string {
	return path.Join(g.prefix, code+".png")
}

func (g *GCS) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if g == nil || g.client == nil {
		return "", entity.ErrStorageDegraded
	}
	obj := g.client.Bucket(g.bucket).Object(name)

	w := obj.NewWriter(ctx)
	w.ContentType = contentTypePNG
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("%w: write %s: %v", entity.ErrStorageDegraded, name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: close %s: %v", entity.ErrStorageDegraded, name, err)
	}

	if g.makePublic {
		if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
			return "", fmt.Errorf("%w: make public %s: %v", entity.ErrStorageDegraded, name, err)
		}
	}
	return PublicURL(g.bucket, name), nil
}

func (g *GCS) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

func PublicURL(bucket, name string) string {
	return fmt.Sprintf("%s/%s/%s", publicHost, bucket, name)
}
