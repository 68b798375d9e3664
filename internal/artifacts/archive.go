package artifacts

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Archive streams the whole artifact tree as a zstd-compressed tarball.
// Paths inside the archive are relative to the logs directory.
func (s *Store) Archive(w io.Writer) error {
	return s.archive(w, func(string) bool { return true })
}

// ArchiveTask streams only the artifacts belonging to one task.
func (s *Store) ArchiveTask(w io.Writer, taskID string) error {
	needle := sanitizeName(taskID)
	return s.archive(w, func(rel string) bool {
		return strings.Contains(filepath.Base(rel), needle)
	})
}

func (s *Store) archive(w io.Writer, include func(rel string) bool) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	tw := tar.NewWriter(zw)

	walkErr := filepath.WalkDir(s.LogsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.LogsDir, path)
		if err != nil {
			return err
		}
		if !include(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if walkErr != nil {
		tw.Close()
		zw.Close()
		return fmt.Errorf("failed to archive artifacts: %w", walkErr)
	}

	if err := tw.Close(); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
