package adapter

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// Storage is read access to the media blob store. The ingest pipeline pulls
// bytes through it; the retrieval core never does.
type Storage interface {
	// Get opens the object stored under key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

type storageClient struct {
	bucketName string
	client     *storage.Client
}

// NewStorage creates a Cloud Storage client bound to one bucket
func NewStorage(ctx context.Context, bucketName string) (Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &storageClient{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (s *storageClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := s.client.Bucket(s.bucketName).Object(key).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read media object", goerr.V("key", key))
	}

	return reader, nil
}
