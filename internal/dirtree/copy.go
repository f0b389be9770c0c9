package dirtree

import (
	"os"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// CopyTree copies every file and directory under srcRoot in src to the same
// relative location under dstRoot in dst. Existing files are overwritten.
// It returns the number of files copied.
func CopyTree(src billy.Filesystem, srcRoot string, dst billy.Filesystem, dstRoot string) (int, error) {
	copied := 0
	err := util.Walk(src, srcRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return &IoError{Op: "walk", Path: path, Err: err}
		}
		rel, err := filepath.Rel(srcRoot, path)
		if err != nil {
			return &IoError{Op: "rel", Path: path, Err: err}
		}
		target := dst.Join(dstRoot, rel)

		if info.IsDir() {
			if err := dst.MkdirAll(target, 0o755); err != nil {
				return &IoError{Op: "mkdir", Path: target, Err: err}
			}
			return nil
		}

		data, err := util.ReadFile(src, path)
		if err != nil {
			return &IoError{Op: "read", Path: path, Err: err}
		}
		if err := util.WriteFile(dst, target, data, info.Mode().Perm()); err != nil {
			return &IoError{Op: "write", Path: target, Err: err}
		}
		copied++
		return nil
	})
	return copied, err
}
