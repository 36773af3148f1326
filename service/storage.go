package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	gstorage "cloud.google.com/go/storage"
)

const gsPrefix = "gs://"

// ErrFileNotFound is an error returned by ReadFile
type ErrFileNotFound struct {
	File string
}

func (e ErrFileNotFound) Error() string {
	return fmt.Sprintf("File not found: %s", e.File)
}

func isErrNotFound(err error) bool {
	var epath *os.PathError
	return errors.Is(err, gstorage.ErrObjectNotExist) ||
		errors.Is(err, gstorage.ErrBucketNotExist) ||
		(errors.As(err, &epath) && os.IsNotExist(epath))
}

// ParseGsURI splits gs://bucket/object into bucket and object
func ParseGsURI(uri string) (string, string, error) {
	if !strings.HasPrefix(uri, gsPrefix) {
		return "", "", fmt.Errorf("ParseGsURI: %s is not a gs:// uri", uri)
	}
	bucket, object, _ := strings.Cut(strings.TrimPrefix(uri, gsPrefix), "/")
	if bucket == "" || object == "" {
		return "", "", fmt.Errorf("ParseGsURI: missing bucket or object in %s", uri)
	}
	return bucket, object, nil
}

// ReadFile reads a local file or a gs://bucket/object
// Raise ErrFileNotFound
func ReadFile(ctx context.Context, uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, gsPrefix) {
		b, err := os.ReadFile(uri)
		if err != nil {
			if isErrNotFound(err) {
				return nil, ErrFileNotFound{uri}
			}
			return nil, fmt.Errorf("ReadFile: %w", err)
		}
		return b, nil
	}

	bucket, object, err := ParseGsURI(uri)
	if err != nil {
		return nil, fmt.Errorf("ReadFile.%w", err)
	}
	client, err := gstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("ReadFile.NewClient: %w", err)
	}
	defer client.Close()
	return readObject(ctx, client, bucket, object)
}

func readObject(ctx context.Context, client *gstorage.Client, bucket, object string) ([]byte, error) {
	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if isErrNotFound(err) {
			return nil, ErrFileNotFound{gsPrefix + bucket + "/" + object}
		}
		return nil, fmt.Errorf("ReadFile.NewReader: %w", err)
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, MakeTemporary(fmt.Errorf("ReadFile.ReadAll: %w", err))
	}
	return b, nil
}

// WriteJSON encodes v into a local file or a gs://bucket/object
func WriteJSON(ctx context.Context, uri string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("WriteJSON.Marshal: %w", err)
	}
	if !strings.HasPrefix(uri, gsPrefix) {
		if err := os.WriteFile(uri, b, 0644); err != nil {
			return fmt.Errorf("WriteJSON.WriteFile: %w", err)
		}
		return nil
	}

	bucket, object, err := ParseGsURI(uri)
	if err != nil {
		return fmt.Errorf("WriteJSON.%w", err)
	}
	client, err := gstorage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("WriteJSON.NewClient: %w", err)
	}
	defer client.Close()
	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(b); err != nil {
		w.Close()
		return MakeTemporary(fmt.Errorf("WriteJSON.Write: %w", err))
	}
	if err := w.Close(); err != nil {
		return MakeTemporary(fmt.Errorf("WriteJSON.Close: %w", err))
	}
	return nil
}
