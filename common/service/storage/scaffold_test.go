package storage

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestScaffold(t *testing.T) {
	asserter := assert.New(t)

	fs := afero.NewMemMapFs()
	asserter.NoError(Scaffold(fs, "/data"))

	for _, dir := range ScaffoldTree() {
		exists, err := afero.DirExists(fs, filepath.Join("/data", dir.Path))
		asserter.NoError(err)
		asserter.True(exists, dir.Path)
	}

	// a second run over an existing tree is a no-op
	asserter.NoError(Scaffold(fs, "/data"))
}

func TestWriteFile(t *testing.T) {
	asserter := assert.New(t)

	fs := afero.NewMemMapFs()
	asserter.NoError(WriteFile(fs, "/data/assets/ssl/cert.pem", []byte("pem"), 0644))

	content, err := afero.ReadFile(fs, "/data/assets/ssl/cert.pem")
	asserter.NoError(err)
	asserter.Equal("pem", string(content))

	info, err := fs.Stat("/data/assets/ssl/cert.pem")
	asserter.NoError(err)
	asserter.Equal("-rw-r--r--", info.Mode().Perm().String())
}

func TestLocalPaths(t *testing.T) {
	asserter := assert.New(t)

	previous := Local{}.GetDataRootPath()
	defer SetDataRoot(previous)

	SetDataRoot("/srv/mail")
	asserter.Equal("/srv/mail", Local{}.GetDataRootPath())
	asserter.Equal("/srv/mail/assets/ssl/cert.pem", Local{}.GetCertPath())
	asserter.Equal("/srv/mail/assets/ssl/key.pem", Local{}.GetCertKeyPath())
	asserter.Equal("/srv/mail/mailstack.db", Local{}.GetDatabasePath())

	// empty never clears the root
	SetDataRoot("")
	asserter.Equal("/srv/mail", Local{}.GetDataRootPath())
}

func TestEnvFilePath(t *testing.T) {
	asserter := assert.New(t)

	t.Setenv("MAILSTACK_ENV_FILE", "/etc/mailstack/mailstack.env")
	asserter.Equal("/etc/mailstack/mailstack.env", Local{}.GetEnvFilePath())

	t.Setenv("MAILSTACK_ENV_FILE", "")
	asserter.Equal("mailstack.env", Local{}.GetEnvFilePath())
}
