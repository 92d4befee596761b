package tonnage

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"time"

	"github.com/rearc-data/fred-truck-tonnage/errors"
	"github.com/rearc-data/fred-truck-tonnage/internal/validation"
	"github.com/rearc-data/fred-truck-tonnage/tonnagetypes"
)

// FetchAndSync downloads one variant, uploads it when its content differs
// from the stored object and reports where the variant now resides.
//
// The transient local file is removed before FetchAndSync returns, whatever
// the outcome. A retrieval failure creates no local file and is returned as
// an *errors.RetrievalError.
func (s *Syncer) FetchAndSync(ctx context.Context, variant tonnagetypes.Variant) (result *tonnagetypes.FetchResult, err error) {
	if err := validation.ValidateVariant(variant); err != nil {
		return nil, err
	}

	start := time.Now()
	filename := tonnagetypes.Filename(s.cfg.DatasetName, variant)
	key := s.DestinationKey(variant)

	body, err := s.fetcher.Open(ctx, variant)
	if err != nil {
		s.logError(ctx, "fetch failed", variant, key, err)
		return nil, err
	}

	defer func() {
		if rerr := s.removeLocal(filename); rerr != nil && err == nil {
			s.logError(ctx, "cleanup failed", variant, key, rerr)
			result, err = nil, rerr
		}
	}()

	size, err := s.persist(filename, body)
	if err != nil {
		s.logError(ctx, "persist failed", variant, key, err)
		return nil, err
	}

	changed, err := s.comparator.HasChanged(ctx, s.s3Client, s.cfg.Bucket, key, filename)
	if err != nil {
		s.logError(ctx, "compare failed", variant, key, err)
		return nil, err
	}

	result = &tonnagetypes.FetchResult{
		Variant: variant,
		Changed: changed,
		AssetSource: tonnagetypes.AssetSource{
			Bucket: s.cfg.Bucket,
			Key:    key,
		},
		Size: size,
	}

	if changed {
		up, err := s.uploader.UploadFile(ctx, s.cfg.Bucket, key, filename)
		if err != nil {
			s.logError(ctx, "upload failed", variant, key, err)
			return nil, err
		}
		result.ETag = up.ETag

		if s.logger != nil {
			s.logger.InfoContext(ctx, "uploaded",
				"file", filename,
				"bucket", s.cfg.Bucket,
				"key", key,
				"size", size)
		}
	} else if s.logger != nil {
		s.logger.InfoContext(ctx, "no update needed",
			"file", filename,
			"bucket", s.cfg.Bucket,
			"key", key)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// persist writes body to filename, truncating any previous content, and
// closes body. A failed read of body is returned as is; local file failures
// are *errors.Error.
func (s *Syncer) persist(filename string, body io.ReadCloser) (int64, error) {
	defer func() { _ = body.Close() }()

	f, err := s.fs.Create(filename)
	if err != nil {
		return 0, errors.NewError("persist", err).WithMessage("create local file")
	}

	n, err := io.Copy(f, body)
	if err != nil {
		_ = f.Close()
		if errors.IsRetrievalError(err) {
			return n, err
		}
		return n, errors.NewError("persist", err).WithMessage("write local file")
	}

	if err := f.Close(); err != nil {
		return n, errors.NewError("persist", err).WithMessage("close local file")
	}
	return n, nil
}

// removeLocal deletes filename. A file that was never created is not an error.
func (s *Syncer) removeLocal(filename string) error {
	if err := s.fs.Remove(filename); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return errors.NewError("cleanup", err)
	}
	return nil
}

func (s *Syncer) logError(ctx context.Context, msg string, variant tonnagetypes.Variant, key string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.ErrorContext(ctx, msg,
		"variant", variant.String(),
		"bucket", s.cfg.Bucket,
		"key", key,
		"error", err)
}
