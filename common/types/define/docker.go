package define

import "time"

const (
	DockerConnectServerTimeout = time.Second * 10
	DockerMinServerVersion     = "20.10.0"
)

const (
	DockerRemoteTypeSSH  = "ssh"
	DockerRemoteTypeSock = "sock"
	DockerRemoteTypeTcp  = "tcp"
)

const (
	DockerDefaultClientName = "local"
)
