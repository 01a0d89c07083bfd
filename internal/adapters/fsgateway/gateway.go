package fsgateway

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bnema/chatfs/internal/domain"
	"github.com/bnema/chatfs/internal/ports"
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// Gateway performs filesystem operations against absolute paths that were
// already resolved into the sandbox. Platform errors never cross the port:
// everything maps to the domain taxonomy.
type Gateway struct{}

var _ ports.FileGateway = (*Gateway)(nil)

func New() *Gateway { return &Gateway{} }

func (g *Gateway) Stat(ctx context.Context, absolute string) (domain.FileStat, error) {
	if err := ctx.Err(); err != nil {
		return domain.FileStat{}, err
	}

	info, err := os.Stat(absolute)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.FileStat{}, domain.ErrNotFound
		}
		return domain.FileStat{}, ioError("stat", absolute, err)
	}
	return statOf(info), nil
}

func (g *Gateway) Read(ctx context.Context, absolute string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(absolute)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, ioError("read", absolute, err)
	}
	if info.IsDir() {
		return nil, domain.ErrIsADirectory
	}

	data, err := os.ReadFile(absolute)
	if err != nil {
		return nil, ioError("read", absolute, err)
	}
	return data, nil
}

func (g *Gateway) Write(ctx context.Context, absolute string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if info, err := os.Stat(absolute); err == nil && info.IsDir() {
		return domain.ErrIsADirectory
	}

	if err := os.MkdirAll(filepath.Dir(absolute), dirMode); err != nil {
		return ioError("write", absolute, err)
	}
	if err := os.WriteFile(absolute, data, fileMode); err != nil {
		return ioError("write", absolute, err)
	}
	return nil
}

func (g *Gateway) List(ctx context.Context, absolute string) ([]domain.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(absolute)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, ioError("list", absolute, err)
	}
	if !info.IsDir() {
		return nil, domain.ErrNotADirectory
	}

	children, err := os.ReadDir(absolute)
	if err != nil {
		return nil, ioError("list", absolute, err)
	}

	entries := make([]domain.DirEntry, 0, len(children))
	for _, child := range children {
		kind := domain.EntryFile
		if child.IsDir() {
			kind = domain.EntryDirectory
		}
		entries = append(entries, domain.DirEntry{Name: child.Name(), Kind: kind})
	}
	return entries, nil
}

// Delete removes a regular file. Directories are never removed through this
// gateway.
func (g *Gateway) Delete(ctx context.Context, absolute string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(absolute)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNotFound
		}
		return ioError("delete", absolute, err)
	}
	if info.IsDir() {
		return domain.ErrIsADirectory
	}

	if err := os.Remove(absolute); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNotFound
		}
		return ioError("delete", absolute, err)
	}
	return nil
}

func statOf(info fs.FileInfo) domain.FileStat {
	if info.IsDir() {
		return domain.FileStat{Kind: domain.EntryDirectory}
	}
	return domain.FileStat{Kind: domain.EntryFile, Size: info.Size()}
}

// ioError strips the *os.PathError wrapper so the raw platform path does not
// leak into surfaced text; the domain error carries the path separately.
func ioError(op, path string, err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		err = pathErr.Err
	}
	return &domain.IOError{Op: op, Path: path, Cause: err}
}
