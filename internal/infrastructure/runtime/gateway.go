package runtime

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/logging"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/paths"
)

// cacheDirs are the cache locations inside a partition directory.
var cacheDirs = []string{"Cache", "Code Cache", "GPUCache", "DawnCache"}

// cookieFiles make up the on-disk cookie store of a partition.
var cookieFiles = []string{"Cookies", "Cookies-journal"}

// Gateway performs session storage operations on partition directories.
type Gateway struct {
	layout paths.Layout
	log    *logging.Logger
}

// NewGateway creates a filesystem-backed session gateway.
func NewGateway(layout paths.Layout, log *logging.Logger) *Gateway {
	return &Gateway{layout: layout, log: log}
}

// ClearStorageData removes everything inside the partition directory,
// keeping the directory itself so an open session can recreate its
// files. A missing directory is already clear.
func (g *Gateway) ClearStorageData(ctx context.Context, partition string) error {
	dir := g.layout.PartitionDir(partition)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read partition dir: %w", err)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("failed to clear %s: %w", e.Name(), err)
		}
	}
	g.log.Info("Partition storage cleared", zap.String("partition", partition))
	return nil
}

// ClearCache drops the cache directories of a partition.
func (g *Gateway) ClearCache(ctx context.Context, partition string) error {
	dir := g.layout.PartitionDir(partition)
	for _, name := range cacheDirs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.RemoveAll(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("failed to clear cache %s: %w", name, err)
		}
	}
	return nil
}

// CopyCookies replaces dst's cookie store with a copy of src's. A source
// with no cookie store yet leaves dst untouched.
func (g *Gateway) CopyCookies(ctx context.Context, src, dst string) error {
	srcDir := g.layout.PartitionDir(src)
	dstDir := g.layout.PartitionDir(dst)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("failed to create partition dir: %w", err)
	}

	copied := 0
	for _, name := range cookieFiles {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := copyFile(filepath.Join(srcDir, name), filepath.Join(dstDir, name))
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", name, err)
		}
		copied += n
	}
	g.log.Info("Cookie store copied",
		zap.String("from", src),
		zap.String("to", dst),
		zap.Int("files", copied),
	)
	return nil
}

// copyFile copies src over dst, reporting 1 when a file was copied and 0
// when src does not exist.
func copyFile(src, dst string) (int, error) {
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return 0, err
	}
	return 1, out.Close()
}
