// Package preview serves a materialized site over NFSv3 so it can be
// mounted and browsed like a local directory.
package preview

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os/exec"
	"runtime"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"
	nfs "github.com/willscott/go-nfs"
	nfshelper "github.com/willscott/go-nfs/helpers"
)

// DefaultAddr listens on an ephemeral localhost port.
const DefaultAddr = "127.0.0.1:0"

// Server manages the NFS server lifecycle.
type Server struct {
	listener net.Listener
	port     int
	logger   *slog.Logger
	done     chan struct{}
}

// NewServer exports root of fs, read-only, on addr (DefaultAddr if empty)
// and starts serving in the background. A nil logger uses slog.Default().
func NewServer(fs billy.Filesystem, root, addr string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = DefaultAddr
	}

	info, err := fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("preview root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("preview root %s: not a directory", root)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("nfs listen: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	exported := ReadOnly(chroot.New(fs, root))
	handler := nfshelper.NewNullAuthHandler(exported)
	cacheHelper := nfshelper.NewCachingHandler(handler, 4096)

	s := &Server{listener: listener, port: port, logger: logger, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		if err := nfs.Serve(listener, cacheHelper); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Error("nfs server stopped", slog.Any("error", err))
		}
	}()

	logger.Info("serving preview", slog.String("root", root), slog.Int("port", port))
	return s, nil
}

// Port returns the TCP port the NFS server is listening on.
func (s *Server) Port() int {
	return s.port
}

// Addr returns the listener address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Close stops the NFS server and waits for the serve loop to exit.
func (s *Server) Close() error {
	err := s.listener.Close()
	<-s.done
	return err
}

// MountCommand builds the system mount command for a read-only mount of
// the server on port at mountpoint.
func MountCommand(goos string, port int, mountpoint string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		opts := fmt.Sprintf("port=%d,mountport=%d,vers=3,tcp,locallocks,noresvport,rdonly", port, port)
		return exec.Command("sudo", "mount", "-t", "nfs", "-o", opts, "localhost:/", mountpoint), nil
	case "linux":
		opts := fmt.Sprintf("port=%d,mountport=%d,vers=3,tcp,local_lock=all,nolock,ro", port, port)
		return exec.Command("sudo", "mount", "-t", "nfs", "-o", opts, "localhost:/", mountpoint), nil
	default:
		return nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}

// Mount mounts the server on port at mountpoint. Requires sudo.
func Mount(port int, mountpoint string) error {
	cmd, err := MountCommand(runtime.GOOS, port, mountpoint)
	if err != nil {
		return err
	}
	cmd.Stdin = nil
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("mount failed: %w\n%s", err, string(output))
	}
	return nil
}

// Unmount unmounts mountpoint.
func Unmount(mountpoint string) error {
	if runtime.GOOS == "darwin" {
		// diskutil needs no sudo for user NFS mounts
		if err := exec.Command("diskutil", "unmount", mountpoint).Run(); err == nil {
			return nil
		}
	}
	output, err := exec.Command("sudo", "umount", mountpoint).CombinedOutput()
	if err != nil {
		return fmt.Errorf("unmount failed: %w\n%s", err, string(output))
	}
	return nil
}
