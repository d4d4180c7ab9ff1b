package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/hnglance/internal/adapters/secrets/file"
	passstore "github.com/bnema/hnglance/internal/adapters/secrets/pass"
	"github.com/bnema/hnglance/internal/ports"
)

// Reader asks each backend in order and returns the first value found.
type Reader struct {
	readers []ports.SecretReader
}

var _ ports.SecretReader = (*Reader)(nil)

var errNoReaders = errors.New("no secret backend configured")

func NewReader(readers ...ports.SecretReader) (*Reader, error) {
	if len(readers) == 0 {
		return nil, errNoReaders
	}
	for i, reader := range readers {
		if reader == nil {
			return nil, fmt.Errorf("secret backend %d is nil", i)
		}
	}

	return &Reader{readers: readers}, nil
}

func NewPassFirstWithFileFallback(fileRoot string) (*Reader, error) {
	return NewReader(passstore.NewReader(), filestore.NewReader(fileRoot))
}

func (r *Reader) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	for _, reader := range r.readers {
		value, err := reader.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if shouldSkipFallback(err) {
			return "", err
		}
		errs = append(errs, err)
	}

	return "", fmt.Errorf("resolve secret %q: %w", key, errors.Join(errs...))
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
