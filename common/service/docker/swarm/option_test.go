package swarm

import (
	"testing"
	"time"

	composetypes "github.com/compose-spec/compose-go/v2/types"
	dockerswarm "github.com/docker/docker/api/types/swarm"
	"github.com/stretchr/testify/assert"

	"github.com/cswni/mailstack/common/function"
	"github.com/cswni/mailstack/common/types/define"
)

func TestWithName(t *testing.T) {
	asserter := assert.New(t)

	builder, err := New(WithName("mailstack", "postfix"))
	asserter.NoError(err)

	spec := builder.Spec()
	asserter.Equal("mailstack_postfix", spec.Name)
	asserter.Equal("mailstack", spec.Labels[define.StackLabelNamespace])
	asserter.Equal("mailstack", spec.TaskTemplate.ContainerSpec.Labels[define.StackLabelNamespace])
}

func TestWithImage(t *testing.T) {
	asserter := assert.New(t)

	pinned := "ghcr.io/cswni/mailstack-postfix:1.0@sha256:aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	builder, err := New(WithImage(pinned, "ghcr.io/cswni/mailstack-postfix:1.0"))
	asserter.NoError(err)

	spec := builder.Spec()
	asserter.Equal(pinned, spec.TaskTemplate.ContainerSpec.Image)
	asserter.Equal("ghcr.io/cswni/mailstack-postfix:1.0", spec.Labels[define.StackLabelImage])
}

func TestWithDeployDefaults(t *testing.T) {
	asserter := assert.New(t)

	builder, err := New(WithDeploy(nil))
	asserter.NoError(err)

	mode := builder.Spec().Mode
	asserter.NotNil(mode.Replicated)
	asserter.Equal(uint64(1), *mode.Replicated.Replicas)
}

func TestWithDeploy(t *testing.T) {
	asserter := assert.New(t)

	duration := composetypes.Duration(10 * time.Second)
	builder, err := New(WithDeploy(&composetypes.DeployConfig{
		Mode:     "replicated",
		Replicas: function.Ptr(2),
		RestartPolicy: &composetypes.RestartPolicy{
			Condition: "on-failure",
			Delay:     &duration,
		},
		UpdateConfig: &composetypes.UpdateConfig{
			Order: "stop-first",
		},
		Placement: composetypes.Placement{
			Constraints: []string{"node.labels.mail==true"},
		},
	}))
	asserter.NoError(err)

	spec := builder.Spec()
	asserter.Equal(uint64(2), *spec.Mode.Replicated.Replicas)
	asserter.Equal(dockerswarm.RestartPolicyCondition("on-failure"), spec.TaskTemplate.RestartPolicy.Condition)
	asserter.Equal(10*time.Second, *spec.TaskTemplate.RestartPolicy.Delay)
	asserter.Equal("stop-first", spec.UpdateConfig.Order)
	asserter.Equal(uint64(1), spec.UpdateConfig.Parallelism)
	asserter.Contains(spec.TaskTemplate.Placement.Constraints, "node.labels.mail==true")
}

func TestWithDeployGlobal(t *testing.T) {
	asserter := assert.New(t)

	builder, err := New(WithDeploy(&composetypes.DeployConfig{Mode: "global"}))
	asserter.NoError(err)
	asserter.NotNil(builder.Spec().Mode.Global)

	_, err = New(WithDeploy(&composetypes.DeployConfig{Mode: "replicated-job"}))
	asserter.ErrorContains(err, "unsupported deploy mode")
}

func TestWithConstraint(t *testing.T) {
	asserter := assert.New(t)

	builder, err := New(WithConstraint(""))
	asserter.NoError(err)
	asserter.Contains(builder.Spec().TaskTemplate.Placement.Constraints, "node.role==manager")

	builder, err = New(WithConstraint("mail-1"))
	asserter.NoError(err)
	asserter.Contains(builder.Spec().TaskTemplate.Placement.Constraints, "node.hostname==mail-1")

	// applying it twice stays idempotent
	builder, err = New(WithConstraint("mail-1"), WithConstraint("mail-1"))
	asserter.NoError(err)
	asserter.Len(builder.Spec().TaskTemplate.Placement.Constraints, 1)
}

func TestWithNetwork(t *testing.T) {
	asserter := assert.New(t)

	builder, err := New(
		WithNetwork("mailstack-net", "postfix"),
		WithNetwork("traefik-public"),
	)
	asserter.NoError(err)

	networks := builder.Spec().TaskTemplate.Networks
	asserter.Len(networks, 2)
	asserter.Equal("mailstack-net", networks[0].Target)
	asserter.Equal([]string{"postfix"}, networks[0].Aliases)
	asserter.Equal("traefik-public", networks[1].Target)
}

func TestWithPorts(t *testing.T) {
	asserter := assert.New(t)

	builder, err := New(WithPorts([]composetypes.ServicePortConfig{
		{Mode: "host", Target: 587, Published: "587"},
		{Mode: "host", Target: 25, Published: "25", Protocol: "tcp"},
		{Target: 443, Published: "443"},
	}))
	asserter.NoError(err)

	ports := builder.Spec().EndpointSpec.Ports
	asserter.Len(ports, 3)
	// sorted by published port
	asserter.Equal(uint32(25), ports[0].PublishedPort)
	asserter.Equal(dockerswarm.PortConfigPublishModeHost, ports[0].PublishMode)
	asserter.Equal(dockerswarm.PortConfigProtocol("tcp"), ports[0].Protocol)
	asserter.Equal(uint32(443), ports[1].PublishedPort)
	asserter.Equal(dockerswarm.PortConfigPublishModeIngress, ports[1].PublishMode)
}

func TestWithPortsBindAddress(t *testing.T) {
	asserter := assert.New(t)

	_, err := New(WithPorts([]composetypes.ServicePortConfig{
		{Target: 443, Published: "443", HostIP: "10.0.0.5"},
	}))
	asserter.ErrorContains(err, "ingress mode")

	// host mode logs and publishes on all interfaces instead
	builder, err := New(WithPorts([]composetypes.ServicePortConfig{
		{Mode: "host", Target: 25, Published: "25", HostIP: "10.0.0.5"},
	}))
	asserter.NoError(err)
	asserter.Len(builder.Spec().EndpointSpec.Ports, 1)
}

func TestWithComposeService(t *testing.T) {
	asserter := assert.New(t)

	gracePeriod := composetypes.Duration(30 * time.Second)
	builder, err := New(WithComposeService(composetypes.ServiceConfig{
		Name:       "postfix",
		Entrypoint: []string{"/docker-entrypoint.sh"},
		Command:    []string{"postfix", "start-fg"},
		Hostname:   "mail.example.org",
		Environment: composetypes.MappingWithEquals{
			"TZ":     function.Ptr("UTC"),
			"DBNAME": function.Ptr("mailstack"),
			"UNSET":  nil,
		},
		StopGracePeriod: &gracePeriod,
		ExtraHosts: composetypes.HostsList{
			"host.docker.internal": []string{"host-gateway"},
		},
	}))
	asserter.NoError(err)

	spec := builder.Spec().TaskTemplate.ContainerSpec
	asserter.Equal([]string{"/docker-entrypoint.sh"}, []string(spec.Command))
	asserter.Equal([]string{"postfix", "start-fg"}, []string(spec.Args))
	asserter.Equal("mail.example.org", spec.Hostname)
	// env sorted, nil entries dropped
	asserter.Equal([]string{"DBNAME=mailstack", "TZ=UTC"}, spec.Env)
	asserter.Equal(30*time.Second, *spec.StopGracePeriod)
	// swarm wants "IP hostname"
	asserter.Equal([]string{"host-gateway host.docker.internal"}, spec.Hosts)
}

func TestWithComposeServiceHealthcheck(t *testing.T) {
	asserter := assert.New(t)

	interval := composetypes.Duration(5 * time.Second)
	retries := uint64(3)
	builder, err := New(WithComposeService(composetypes.ServiceConfig{
		HealthCheck: &composetypes.HealthCheckConfig{
			Test:     []string{"CMD", "mysqladmin", "ping"},
			Interval: &interval,
			Retries:  &retries,
		},
	}))
	asserter.NoError(err)

	check := builder.Spec().TaskTemplate.ContainerSpec.Healthcheck
	asserter.Equal([]string{"CMD", "mysqladmin", "ping"}, check.Test)
	asserter.Equal(5*time.Second, check.Interval)
	asserter.Equal(3, check.Retries)

	builder, err = New(WithComposeService(composetypes.ServiceConfig{
		HealthCheck: &composetypes.HealthCheckConfig{Disable: true},
	}))
	asserter.NoError(err)
	asserter.Equal([]string{"NONE"}, builder.Spec().TaskTemplate.ContainerSpec.Healthcheck.Test)
}

func TestWithMounts(t *testing.T) {
	asserter := assert.New(t)

	builder, err := New(WithMounts("mailstack", []composetypes.ServiceVolumeConfig{
		{Type: "bind", Source: "/opt/mailstack/data/vmail", Target: "/var/vmail"},
		{Type: "volume", Source: "db", Target: "/var/lib/mysql"},
	}))
	asserter.NoError(err)

	mounts := builder.Spec().TaskTemplate.ContainerSpec.Mounts
	asserter.Len(mounts, 2)
	asserter.Equal("/opt/mailstack/data/vmail", mounts[0].Source)
	// named volumes get the stack prefix and namespace label
	asserter.Equal("mailstack_db", mounts[1].Source)
	asserter.Equal("mailstack", mounts[1].VolumeOptions.Labels[define.StackLabelNamespace])
}

func TestWithPlatform(t *testing.T) {
	asserter := assert.New(t)

	builder, err := New(WithPlatform("linux/amd64"))
	asserter.NoError(err)
	platforms := builder.Spec().TaskTemplate.Placement.Platforms
	asserter.Len(platforms, 1)
	asserter.Equal("linux", platforms[0].OS)
	asserter.Equal("amd64", platforms[0].Architecture)

	builder, err = New(WithPlatform(""))
	asserter.NoError(err)
	asserter.Nil(builder.Spec().TaskTemplate.Placement)

	_, err = New(WithPlatform("linux/arm/v7/nope"))
	asserter.ErrorContains(err, "invalid platform")
}
