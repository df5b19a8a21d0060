package logic

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cswni/mailstack/common/service/storage"
)

func setupBackupSource(t *testing.T) (string, string) {
	t.Helper()
	dataRoot := t.TempDir()
	envFile := filepath.Join(t.TempDir(), "mailstack.env")

	previous := storage.Local{}.GetDataRootPath()
	t.Cleanup(func() {
		storage.SetDataRoot(previous)
	})
	storage.SetDataRoot(dataRoot)
	t.Setenv("MAILSTACK_ENV_FILE", envFile)

	if err := os.WriteFile(envFile, []byte("MAILSTACK_HOSTNAME=mail.example.org\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dataRoot, "conf", "postfix"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dataRoot, "conf", "postfix", "extra.cf"), []byte("smtpd_banner = test\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dataRoot, "assets", "ssl"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dataRoot, "assets", "ssl", "cert.pem"), []byte("cert"), 0644); err != nil {
		t.Fatal(err)
	}
	return dataRoot, envFile
}

func TestBackupRoundtrip(t *testing.T) {
	asserter := assert.New(t)

	dataRoot, _ := setupBackupSource(t)
	cfg := testConfig()
	cfg.DataRoot = dataRoot

	target := filepath.Join(t.TempDir(), "backup.tar.gz")
	created, err := CreateBackup(context.Background(), cfg, "1.0.0", target)
	asserter.NoError(err)
	asserter.Equal(target, created)

	info, err := os.Stat(created)
	asserter.NoError(err)
	asserter.Greater(info.Size(), int64(0))

	// restore into a fresh data root and env location
	restoreRoot := t.TempDir()
	restoreEnv := filepath.Join(t.TempDir(), "mailstack.env")
	storage.SetDataRoot(restoreRoot)
	t.Setenv("MAILSTACK_ENV_FILE", restoreEnv)
	cfg.DataRoot = restoreRoot

	asserter.NoError(RestoreBackup(context.Background(), cfg, created))

	env, err := os.ReadFile(restoreEnv)
	asserter.NoError(err)
	asserter.Contains(string(env), "MAILSTACK_HOSTNAME=mail.example.org")

	conf, err := os.ReadFile(filepath.Join(restoreRoot, "conf", "postfix", "extra.cf"))
	asserter.NoError(err)
	asserter.Equal("smtpd_banner = test\n", string(conf))

	cert, err := os.ReadFile(filepath.Join(restoreRoot, "assets", "ssl", "cert.pem"))
	asserter.NoError(err)
	asserter.Equal("cert", string(cert))

	manifest, err := os.ReadFile(filepath.Join(restoreRoot, "manifest.json"))
	asserter.NoError(err)
	asserter.Contains(string(manifest), `"version": "1.0.0"`)
	asserter.Contains(string(manifest), `"config_hash"`)
}

func TestCreateBackupDefaultTarget(t *testing.T) {
	asserter := assert.New(t)

	dataRoot, _ := setupBackupSource(t)
	cfg := testConfig()
	cfg.DataRoot = dataRoot

	created, err := CreateBackup(context.Background(), cfg, "1.0.0", "")
	asserter.NoError(err)
	asserter.Contains(created, "mailstack-backup-")
	asserter.Contains(created, ".tar.gz")
}

func TestCreateBackupNothingToArchive(t *testing.T) {
	asserter := assert.New(t)

	emptyRoot := t.TempDir()
	previous := storage.Local{}.GetDataRootPath()
	t.Cleanup(func() {
		storage.SetDataRoot(previous)
	})
	storage.SetDataRoot(emptyRoot)
	t.Setenv("MAILSTACK_ENV_FILE", filepath.Join(emptyRoot, "missing.env"))

	cfg := testConfig()
	cfg.DataRoot = emptyRoot

	_, err := CreateBackup(context.Background(), cfg, "1.0.0", filepath.Join(emptyRoot, "backup.tar.gz"))
	asserter.ErrorContains(err, "nothing to back up")
}

func TestRestoreBackupRejectsNonGzip(t *testing.T) {
	asserter := assert.New(t)

	source := filepath.Join(t.TempDir(), "backup.tar.gz")
	asserter.NoError(os.WriteFile(source, []byte("plain text, not an archive"), 0644))

	err := RestoreBackup(context.Background(), testConfig(), source)
	asserter.ErrorContains(err, "not a gzip archive")
}
