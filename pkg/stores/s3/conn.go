package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

/*
Config holds the connection settings for an S3-compatible object store.
*/
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

/*
Conn wraps a MinIO client scoped to a single bucket. It is the raw object
plumbing; Store layers document semantics on top of it.
*/
type Conn struct {
	client *minio.Client
	bucket string
}

/*
NewConn dials the object store and makes sure the bucket exists.
*/
func NewConn(ctx context.Context, cfg Config) (*Conn, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &Conn{client: client, bucket: cfg.Bucket}, nil
}

func (conn *Conn) Put(ctx context.Context, key string, data []byte) error {
	_, err := conn.client.PutObject(
		ctx,
		conn.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	return err
}

// Get returns the object bytes, or absent=false when the key does not
// exist.
func (conn *Conn) Get(ctx context.Context, key string) ([]byte, bool, error) {
	obj, err := conn.client.GetObject(ctx, conn.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// List returns the object keys under prefix. S3 lists lexically, so
// time-ordered keys come back in insertion order.
func (conn *Conn) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range conn.client.ListObjects(ctx, conn.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (conn *Conn) Ping(ctx context.Context) error {
	_, err := conn.client.BucketExists(ctx, conn.bucket)
	return err
}
