package supabase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	storage "github.com/supabase-community/storage-go"
)

// StorageClient adapts the Supabase storage client to bucket/path calls.
// storage-go takes no context, so each call runs in its own goroutine and
// the caller stops waiting when ctx is done.
type StorageClient struct {
	client *storage.Client
}

func NewStorageClient(client *storage.Client) *StorageClient {
	return &StorageClient{client: client}
}

// NewStorageClientFromURL builds a standalone storage client.
func NewStorageClientFromURL(supabaseURL, serviceRoleKey string) *StorageClient {
	baseURL := strings.TrimRight(supabaseURL, "/")
	return NewStorageClient(storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil))
}

func (s *StorageClient) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	var data []byte
	err := withContext(ctx, func() error {
		var err error
		data, err = s.client.DownloadFile(bucket, path)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s/%s: %w", bucket, path, err)
	}
	return data, nil
}

// Upload never overwrites: an existing object at path is an error. If ctx
// ends first and the upload still lands, the object is removed again.
func (s *StorageClient) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	upsert := false
	err := withContextAfter(ctx, func() error {
		_, err := s.client.UploadFile(bucket, path, bytes.NewReader(data), storage.FileOptions{
			ContentType: &contentType,
			Upsert:      &upsert,
		})
		return err
	}, func() {
		_, _ = s.client.RemoveFile(bucket, []string{path})
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", bucket, path, err)
	}
	return nil
}

func (s *StorageClient) Remove(ctx context.Context, bucket string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	err := withContext(ctx, func() error {
		_, err := s.client.RemoveFile(bucket, paths)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to remove from %s: %w", bucket, err)
	}
	return nil
}

func (s *StorageClient) CreateSignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	var url string
	err := withContext(ctx, func() error {
		resp, err := s.client.CreateSignedUrl(bucket, path, int(ttl.Seconds()))
		if err != nil {
			return err
		}
		url = resp.SignedURL
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign %s/%s: %w", bucket, path, err)
	}
	return url, nil
}

func withContext(ctx context.Context, fn func() error) error {
	return withContextAfter(ctx, fn, nil)
}

// withContextAfter is withContext plus a hook run in the background when fn
// succeeds after ctx has already ended.
func withContextAfter(ctx context.Context, fn func() error, late func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if late != nil {
			go func() {
				if err := <-done; err == nil {
					late()
				}
			}()
		}
		return ctx.Err()
	}
}
