package storage

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	// uid/gid the dovecot and postfix images run their mail processes as.
	VmailUid = 5000
	VmailGid = 5000
)

type Dir struct {
	Path  string
	Mode  fs.FileMode
	Vmail bool
}

// ScaffoldTree is the directory layout every deployment expects below the
// data root. Paths are relative to it.
func ScaffoldTree() []Dir {
	return []Dir{
		{Path: "conf", Mode: 0755},
		{Path: "assets/ssl", Mode: 0755},
		{Path: "db/mysql", Mode: 0755},
		{Path: "db/redis", Mode: 0755},
		{Path: "vmail", Mode: 0755, Vmail: true},
		{Path: "vmail-index", Mode: 0755, Vmail: true},
		{Path: "rspamd", Mode: 0755},
		{Path: "postfix", Mode: 0755},
		{Path: "sogo", Mode: 0755},
		{Path: "clamd", Mode: 0755},
		{Path: "crypt", Mode: 0700, Vmail: true},
		{Path: "logs", Mode: 0755},
	}
}

// Scaffold creates the data tree through the given filesystem, which is an
// os fs for local engines and an sftp-backed one for ssh:// engines. Existing
// directories are left alone. Ownership of the vmail dirs is best effort, the
// deploying user is often not root.
func Scaffold(dst afero.Fs, root string) error {
	for _, dir := range ScaffoldTree() {
		path := filepath.Join(root, dir.Path)
		if err := dst.MkdirAll(path, dir.Mode); err != nil {
			return fmt.Errorf("scaffold %s: %w", path, err)
		}
		if err := dst.Chmod(path, dir.Mode); err != nil {
			slog.Debug("scaffold chmod", "path", path, "err", err)
		}
		if dir.Vmail {
			if err := dst.Chown(path, VmailUid, VmailGid); err != nil {
				slog.Warn("scaffold chown vmail dir skipped", "path", path, "err", err)
			}
		}
	}
	return nil
}

// NewLocalFs returns the fs Scaffold and the cert writer use for a local
// engine.
func NewLocalFs() afero.Fs {
	return afero.NewOsFs()
}

// WriteFile writes through an afero fs with os.WriteFile semantics,
// creating parent directories first.
func WriteFile(dst afero.Fs, path string, content []byte, mode os.FileMode) error {
	if err := dst.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := afero.WriteFile(dst, path, content, mode); err != nil {
		return err
	}
	return dst.Chmod(path, mode)
}
