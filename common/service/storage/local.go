package storage

import (
	"os"
	"path/filepath"
)

var (
	dataRoot = defaultDataRoot()
)

func defaultDataRoot() string {
	if e := os.Getenv("DATA_ROOT"); e != "" {
		return e
	}
	return "/opt/mailstack/data"
}

// SetDataRoot overrides the resolved data root, called once after the
// deployment config has been loaded.
func SetDataRoot(path string) {
	if path != "" {
		dataRoot = path
	}
}

type Local struct {
}

func (self Local) GetDataRootPath() string {
	return dataRoot
}

func (self Local) GetSslPath() string {
	return filepath.Join(dataRoot, "assets", "ssl")
}

func (self Local) GetCertPath() string {
	return filepath.Join(self.GetSslPath(), "cert.pem")
}

func (self Local) GetCertKeyPath() string {
	return filepath.Join(self.GetSslPath(), "key.pem")
}

func (self Local) GetDatabasePath() string {
	return filepath.Join(dataRoot, "mailstack.db")
}

func (self Local) GetStagingPath() string {
	return filepath.Join(dataRoot, "staging")
}

func (self Local) GetSshKnownHostsPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".ssh", "known_hosts")
}

func (self Local) GetEnvFilePath() string {
	if e := os.Getenv("MAILSTACK_ENV_FILE"); e != "" {
		return e
	}
	return "mailstack.env"
}
