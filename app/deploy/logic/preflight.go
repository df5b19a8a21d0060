package logic

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/cswni/mailstack/common/accessor"
	"github.com/cswni/mailstack/common/service/config"
	"github.com/cswni/mailstack/common/service/docker"
	"github.com/cswni/mailstack/common/service/registry"
	"github.com/cswni/mailstack/common/types/define"
	"github.com/docker/go-units"
	version "github.com/mcuadros/go-version"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

const (
	memoryFloor      = 1536 * units.MiB
	memoryClamdFloor = 2560 * units.MiB
	diskFloor        = 5 * units.GiB
)

type Preflight struct {
	Config *config.Config
	Client *docker.Client
	// SkipImageCheck and SkipDnsCheck mirror the cli flags, registries and
	// resolvers can be unreachable from build hosts.
	SkipImageCheck bool
	SkipDnsCheck   bool
}

// Run executes every check and returns the full result list. The error is
// non-nil when at least one fatal check failed, warnings never block a
// deployment.
func (self Preflight) Run(ctx context.Context) ([]accessor.DeploymentCheckResult, error) {
	results := []accessor.DeploymentCheckResult{
		self.checkEngineVersion(ctx),
		self.checkSwarmManager(ctx),
		self.checkNodes(ctx),
		self.checkMemory(ctx),
		self.checkDisk(ctx),
	}
	if !self.SkipDnsCheck {
		results = append(results, self.checkDnsHost(), self.checkDnsMx())
	}
	if !self.SkipImageCheck {
		results = append(results, self.checkImages())
	}
	if self.Config.TraefikEnabled {
		results = append(results, self.checkTraefikNetwork(ctx))
	}
	var fatal []string
	for _, result := range results {
		if !result.Ok && result.Fatal {
			fatal = append(fatal, fmt.Sprintf("%s: %s", result.Name, result.Message))
		}
	}
	if len(fatal) > 0 {
		return results, fmt.Errorf("preflight failed: %s", strings.Join(fatal, "; "))
	}
	return results, nil
}

func (self Preflight) checkEngineVersion(ctx context.Context) accessor.DeploymentCheckResult {
	result := accessor.DeploymentCheckResult{Name: "engine-version", Fatal: true}
	serverVersion, err := self.Client.Client.ServerVersion(ctx)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	if !version.Compare(serverVersion.Version, define.DockerMinServerVersion, ">=") {
		result.Message = fmt.Sprintf("docker %s is too old, need at least %s", serverVersion.Version, define.DockerMinServerVersion)
		return result
	}
	result.Ok = true
	result.Message = fmt.Sprintf("docker %s", serverVersion.Version)
	return result
}

func (self Preflight) checkSwarmManager(ctx context.Context) accessor.DeploymentCheckResult {
	result := accessor.DeploymentCheckResult{Name: "swarm-manager", Fatal: true}
	if err := self.Client.SwarmManagerCheck(ctx); err != nil {
		result.Message = err.Error()
		return result
	}
	result.Ok = true
	return result
}

func (self Preflight) checkNodes(ctx context.Context) accessor.DeploymentCheckResult {
	result := accessor.DeploymentCheckResult{Name: "ready-nodes", Fatal: true}
	count, err := self.Client.ReadyNodeCount(ctx)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	if count < 1 {
		result.Message = "no ready node in the swarm"
		return result
	}
	result.Ok = true
	result.Message = fmt.Sprintf("%d ready", count)
	return result
}

func (self Preflight) checkMemory(ctx context.Context) accessor.DeploymentCheckResult {
	result := accessor.DeploymentCheckResult{Name: "memory"}
	info, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	total := int64(info.Total)
	if total < memoryFloor {
		result.Fatal = true
		result.Message = fmt.Sprintf("%s total memory is not enough to run the stack", units.BytesSize(float64(total)))
		return result
	}
	if !self.Config.SkipClamd && total < memoryClamdFloor {
		result.Message = fmt.Sprintf("%s total memory is tight for clamd, consider SKIP_CLAMD=y", units.BytesSize(float64(total)))
		return result
	}
	result.Ok = true
	result.Message = units.BytesSize(float64(total))
	return result
}

func (self Preflight) checkDisk(ctx context.Context) accessor.DeploymentCheckResult {
	result := accessor.DeploymentCheckResult{Name: "disk-space"}
	path := self.Config.DataRoot
	if _, err := os.Stat(path); err != nil {
		path = "/"
	}
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	if int64(usage.Free) < diskFloor {
		result.Message = fmt.Sprintf("only %s free under %s", units.BytesSize(float64(usage.Free)), path)
		return result
	}
	result.Ok = true
	result.Message = fmt.Sprintf("%s free", units.BytesSize(float64(usage.Free)))
	return result
}

func (self Preflight) checkImages() accessor.DeploymentCheckResult {
	result := accessor.DeploymentCheckResult{Name: "image-digests", Fatal: true}
	wrapper, err := RenderStack(self.Config)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	missing := make([]string, 0)
	for _, name := range wrapper.ServiceNames() {
		service, _, err := wrapper.GetService(name)
		if err != nil || service.Image == "" {
			continue
		}
		if _, err = registry.ImageDigest(service.Image); err != nil {
			missing = append(missing, fmt.Sprintf("%s (%s)", service.Image, err))
		}
	}
	if len(missing) > 0 {
		result.Message = strings.Join(missing, "; ")
		return result
	}
	result.Ok = true
	return result
}

func (self Preflight) checkTraefikNetwork(ctx context.Context) accessor.DeploymentCheckResult {
	result := accessor.DeploymentCheckResult{Name: "traefik-network", Fatal: true}
	exists, err := self.Client.NetworkExists(ctx, self.Config.TraefikNetwork)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	if !exists {
		result.Message = fmt.Sprintf("network %s not found, create it or disable TRAEFIK_ENABLED", self.Config.TraefikNetwork)
		return result
	}
	result.Ok = true
	return result
}

func (self Preflight) checkDnsHost() accessor.DeploymentCheckResult {
	result := accessor.DeploymentCheckResult{Name: "dns-hostname"}
	addrs, err := net.LookupHost(self.Config.Hostname)
	if err != nil {
		result.Message = fmt.Sprintf("%s does not resolve yet: %s", self.Config.Hostname, err.Error())
		return result
	}
	result.Ok = true
	result.Message = strings.Join(addrs, ", ")
	return result
}

func (self Preflight) checkDnsMx() accessor.DeploymentCheckResult {
	result := accessor.DeploymentCheckResult{Name: "dns-mx"}
	records, err := net.LookupMX(self.Config.Domain())
	if err != nil || len(records) == 0 {
		result.Message = fmt.Sprintf("no MX record for %s, inbound mail will not arrive", self.Config.Domain())
		return result
	}
	for _, record := range records {
		if strings.TrimSuffix(record.Host, ".") == self.Config.Hostname {
			result.Ok = true
			result.Message = record.Host
			return result
		}
	}
	result.Message = fmt.Sprintf("MX for %s points to %s, not %s", self.Config.Domain(), records[0].Host, self.Config.Hostname)
	return result
}
