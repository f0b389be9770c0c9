package preview

import (
	"os"

	billy "github.com/go-git/go-billy/v5"
)

const writeFlags = os.O_WRONLY | os.O_RDWR | os.O_CREATE | os.O_TRUNC | os.O_APPEND

// ReadOnly wraps fs so that every mutating call fails with
// os.ErrPermission. Previews must never write back into a built site.
func ReadOnly(fs billy.Filesystem) billy.Filesystem {
	return &readOnlyFS{Filesystem: fs}
}

type readOnlyFS struct {
	billy.Filesystem
}

func denied(op, path string) error {
	return &os.PathError{Op: op, Path: path, Err: os.ErrPermission}
}

func (fs *readOnlyFS) Create(filename string) (billy.File, error) {
	return nil, denied("create", filename)
}

func (fs *readOnlyFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&writeFlags != 0 {
		return nil, denied("open", filename)
	}
	return fs.Filesystem.OpenFile(filename, flag, perm)
}

func (fs *readOnlyFS) Rename(from, _ string) error {
	return denied("rename", from)
}

func (fs *readOnlyFS) Remove(filename string) error {
	return denied("remove", filename)
}

func (fs *readOnlyFS) TempFile(dir, _ string) (billy.File, error) {
	return nil, denied("tempfile", dir)
}

func (fs *readOnlyFS) MkdirAll(filename string, _ os.FileMode) error {
	return denied("mkdir", filename)
}

func (fs *readOnlyFS) Symlink(_, link string) error {
	return denied("symlink", link)
}

func (fs *readOnlyFS) Chroot(path string) (billy.Filesystem, error) {
	sub, err := fs.Filesystem.Chroot(path)
	if err != nil {
		return nil, err
	}
	return ReadOnly(sub), nil
}

// Capabilities reports read and seek support only.
func (fs *readOnlyFS) Capabilities() billy.Capability {
	return billy.ReadCapability | billy.SeekCapability
}
