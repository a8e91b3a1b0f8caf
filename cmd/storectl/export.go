package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/maillots/storefront/internal/application/reconciliation"
	"github.com/maillots/storefront/internal/infrastructure/export"
	"github.com/maillots/storefront/internal/infrastructure/storage"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportReport writes the workbook to a local path or uploads it when target
// is an s3:// URI. It returns where the report ended up.
func (c *cli) exportReport(ctx context.Context, target string, report *reconciliation.ConsistencyReport) (string, error) {
	dest, err := storage.ParseDestination(target)
	if err != nil {
		return "", err
	}
	if !dest.IsS3() {
		if err := export.SaveConsistencyReport(dest.Key, report); err != nil {
			return "", err
		}
		return dest.Key, nil
	}

	if c.openBucket == nil {
		return "", errors.New("object storage is not configured")
	}
	var buf bytes.Buffer
	if err := export.WriteConsistencyReport(&buf, report); err != nil {
		return "", err
	}
	store, err := c.openBucket(ctx, dest.Bucket)
	if err != nil {
		return "", fmt.Errorf("open bucket %s: %w", dest.Bucket, err)
	}
	location, err := store.Put(ctx, dest.Key, xlsxContentType, buf.Bytes())
	if err != nil {
		return "", err
	}
	c.logger.Info("Consistency report uploaded",
		zap.String("location", location),
		zap.Int("bytes", buf.Len()))
	return location, nil
}
