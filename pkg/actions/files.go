package actions

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/systemstart/imgflow/pkg/api"
)

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// copyFile writes the contents of src to dst with the given mode.
func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", api.ErrFilesystem, src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", api.ErrFilesystem, dst, err)
	}

	_, copyErr := io.Copy(out, in)
	if closeErr := out.Close(); closeErr != nil && copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return fmt.Errorf("%w: writing %s: %v", api.ErrFilesystem, dst, copyErr)
	}
	return nil
}

// moveFile writes src to dst and removes src. It falls back to copying when
// a rename is not possible, such as across devices.
func moveFile(src, dst string) error {
	renameErr := os.Rename(src, dst)
	if renameErr == nil {
		return nil
	}
	slog.Debug("rename failed, copying instead", "src", src, "dst", dst, "error", renameErr)

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", api.ErrFilesystem, src, err)
	}
	if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("%w: removing %s: %v", api.ErrFilesystem, src, err)
	}
	return nil
}
