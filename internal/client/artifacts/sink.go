// Package artifacts stores generated documents: on the local disk by
// default, or in an S3-compatible bucket behind a presigned link.
package artifacts

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/aidocpro/internal/filex"
)

// ErrEmptyArtifact is returned when there is nothing to save.
var ErrEmptyArtifact = errors.New("artifact is empty")

// Sink persists a finished artifact and returns where the user can find it:
// a filesystem path for LocalSink, a download URL for S3Sink.
type Sink interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// LocalSink writes artifacts into Dir, never overwriting an existing file.
type LocalSink struct {
	Dir string
}

func NewLocalSink(dir string) *LocalSink {
	return &LocalSink{Dir: dir}
}

func (s *LocalSink) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyArtifact
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir, err := filex.EnsureSubdDir(s.Dir)
	if err != nil {
		return "", fmt.Errorf("prepare download dir: %w", err)
	}

	path, err := filex.WriteFileAtomic(dir, name, data)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return path, nil
}
