package logic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cswni/mailstack/common/service/config"
	"github.com/cswni/mailstack/common/service/storage"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/mholt/archives"
)

const backupEnvName = "mailstack.env"

type backupManifest struct {
	Version    string `json:"version"`
	CreatedAt  string `json:"created_at"`
	StackName  string `json:"stack_name"`
	ConfigHash string `json:"config_hash"`
}

func writeManifest(cfg *config.Config, version string) (string, error) {
	manifest := backupManifest{
		Version:    version,
		CreatedAt:  time.Now().Format(time.RFC3339),
		StackName:  cfg.StackName,
		ConfigHash: cfg.Hash(),
	}
	content, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("mailstack-manifest-%d.json", os.Getpid()))
	if err = os.WriteFile(path, content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func backupFormat() archives.CompressedArchive {
	return archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}
}

// CreateBackup archives the env file, the config tree, the TLS material and
// the deployment journal. Mail data lives in volumes and is out of scope
// here.
func CreateBackup(ctx context.Context, cfg *config.Config, version, target string) (string, error) {
	if target == "" {
		target = filepath.Join(cfg.DataRoot, fmt.Sprintf("mailstack-backup-%s.tar.gz", time.Now().Format("20060102-150405")))
	}
	local := storage.Local{}
	candidates := map[string]string{
		local.GetEnvFilePath():  backupEnvName,
		local.GetSslPath():      "assets/ssl",
		local.GetDatabasePath(): "mailstack.db",
		filepath.Join(cfg.DataRoot, "conf"): "conf",
	}
	sources := make(map[string]string)
	for src, name := range candidates {
		if _, err := os.Stat(src); err != nil {
			slog.Warn("backup source missing, skipping", "path", src)
			continue
		}
		sources[src] = name
	}
	if len(sources) == 0 {
		return "", fmt.Errorf("nothing to back up, is the stack initialized?")
	}
	if manifest, err := writeManifest(cfg, version); err == nil {
		defer func() {
			_ = os.Remove(manifest)
		}()
		sources[manifest] = "manifest.json"
	} else {
		slog.Warn("backup manifest not written", "error", err)
	}

	files, err := archives.FilesFromDisk(ctx, nil, sources)
	if err != nil {
		return "", err
	}
	out, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = out.Close()
	}()
	if err = backupFormat().Archive(ctx, out, files); err != nil {
		_ = os.Remove(target)
		return "", err
	}
	return target, nil
}

// RestoreBackup unpacks an archive made by CreateBackup. The env file goes
// back to its configured location, everything else lands under the data
// root. Existing files are overwritten.
func RestoreBackup(ctx context.Context, cfg *config.Config, source string) error {
	input, err := os.Open(source)
	if err != nil {
		return err
	}
	defer func() {
		_ = input.Close()
	}()

	head := make([]byte, 262)
	n, _ := io.ReadFull(input, head)
	kind, _ := filetype.Match(head[:n])
	if kind != matchers.TypeGz {
		return fmt.Errorf("%s is not a gzip archive", source)
	}
	if _, err = input.Seek(0, io.SeekStart); err != nil {
		return err
	}

	return backupFormat().Extract(ctx, input, func(ctx context.Context, file archives.FileInfo) error {
		name := filepath.Clean(file.NameInArchive)
		if name == "." || strings.HasPrefix(name, "..") || filepath.IsAbs(name) {
			return fmt.Errorf("refusing archive entry %q", file.NameInArchive)
		}
		target := filepath.Join(cfg.DataRoot, name)
		if name == backupEnvName {
			target = storage.Local{}.GetEnvFilePath()
		}
		if file.IsDir() {
			return os.MkdirAll(target, file.Mode().Perm())
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		reader, err := file.Open()
		if err != nil {
			return err
		}
		defer func() {
			_ = reader.Close()
		}()
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode().Perm())
		if err != nil {
			return err
		}
		defer func() {
			_ = out.Close()
		}()
		_, err = io.Copy(out, reader)
		return err
	})
}
