// Package storage archives completed essays to object storage. The archive
// is best-effort: a failed upload is logged and never blocks the session
// update that triggered it.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/MLiu666/EvoWrite/internal/config"
	"github.com/MLiu666/EvoWrite/internal/logger"
	"github.com/MLiu666/EvoWrite/internal/store"
)

// Archive wraps a MinIO client scoped to the essay bucket.
type Archive struct {
	mc     *minio.Client
	bucket string
}

// NewArchive creates the archive client. It does not touch the network;
// bucket provisioning happens in Init.
func NewArchive(cfg config.ArchiveConfig) (*Archive, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	return &Archive{mc: mc, bucket: cfg.Bucket}, nil
}

// Init creates the essay bucket if it doesn't exist.
func (a *Archive) Init(ctx context.Context) error {
	exists, err := a.mc.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}

	if !exists {
		if err := a.mc.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", a.bucket, err)
		}
		logger.Info("bucket created", "bucket", a.bucket)
	}

	return nil
}

// ArchiveEssay stores a completed writing session as a markdown object keyed
// by learner and session, returning the object name.
func (a *Archive) ArchiveEssay(ctx context.Context, ws *store.WritingSession) (string, error) {
	name := fmt.Sprintf("learner-%d/%s.md", ws.LearnerID, ws.SessionID)
	body := essayDocument(ws)

	_, err := a.mc.PutObject(ctx, a.bucket, name, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "text/markdown"})
	if err != nil {
		return "", fmt.Errorf("archive %s/%s: %w", a.bucket, name, err)
	}

	logger.Debug("essay archived", "bucket", a.bucket, "name", name, "size", len(body))
	return name, nil
}

// FetchEssay retrieves a previously archived essay document.
func (a *Archive) FetchEssay(ctx context.Context, name string) ([]byte, error) {
	obj, err := a.mc.GetObject(ctx, a.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", a.bucket, name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", a.bucket, name, err)
	}

	return data, nil
}

// ListEssays lists archived essay object names for a learner.
func (a *Archive) ListEssays(ctx context.Context, learnerID int64) ([]string, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    fmt.Sprintf("learner-%d/", learnerID),
		Recursive: true,
	}

	var names []string
	for obj := range a.mc.ListObjects(ctx, a.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", a.bucket, obj.Err)
		}
		names = append(names, obj.Key)
	}

	return names, nil
}

func essayDocument(ws *store.WritingSession) []byte {
	var buf bytes.Buffer

	title := ws.EssayTitle
	if title == "" {
		title = "Untitled essay"
	}

	fmt.Fprintf(&buf, "# %s\n\n", title)
	if ws.WritingGoal != "" {
		fmt.Fprintf(&buf, "Goal: %s\n\n", ws.WritingGoal)
	}
	fmt.Fprintf(&buf, "Words: %d | Revisions: %d | Started: %s\n\n",
		ws.WordCount, ws.RevisionCount, ws.StartedAt.Format(time.RFC3339))
	buf.WriteString(ws.EssayContent)
	buf.WriteString("\n")

	return buf.Bytes()
}
