package swarm

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	composetypes "github.com/compose-spec/compose-go/v2/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/swarm"
	"github.com/docker/go-connections/nat"

	"github.com/cswni/mailstack/common/function"
	"github.com/cswni/mailstack/common/service/docker"
	"github.com/cswni/mailstack/common/types/define"
)

type Option func(self *Builder) error

func WithClient(client *docker.Client) Option {
	return func(self *Builder) error {
		self.client = client
		return nil
	}
}

// WithName names the service the way `docker stack deploy` does and stamps
// the namespace label on both the service and its tasks.
func WithName(namespace, serviceName string) Option {
	return func(self *Builder) error {
		self.serviceSpec.Name = fmt.Sprintf("%s_%s", namespace, serviceName)
		self.serviceSpec.Labels[define.StackLabelNamespace] = namespace
		self.serviceSpec.TaskTemplate.ContainerSpec.Labels[define.StackLabelNamespace] = namespace
		return nil
	}
}

// WithImage records the possibly digest-pinned image. The original ref goes
// into the stack image label so `docker stack services` prints something
// readable.
func WithImage(imageRef, originalRef string) Option {
	return func(self *Builder) error {
		self.serviceSpec.TaskTemplate.ContainerSpec.Image = imageRef
		self.serviceSpec.Labels[define.StackLabelImage] = originalRef
		return nil
	}
}

// WithComposeService maps the container-level compose fields onto the task
// template. Compose entrypoint becomes ContainerSpec.Command and compose
// command becomes Args, matching the CLI converter.
func WithComposeService(service composetypes.ServiceConfig) Option {
	return func(self *Builder) error {
		spec := self.serviceSpec.TaskTemplate.ContainerSpec
		spec.Command = service.Entrypoint
		spec.Args = service.Command
		spec.Hostname = service.Hostname
		spec.Env = sortedEnv(service.Environment)
		spec.Dir = service.WorkingDir
		spec.User = service.User
		spec.StopSignal = service.StopSignal
		spec.ReadOnly = service.ReadOnly
		spec.Init = service.Init
		spec.CapabilityAdd = service.CapAdd
		spec.CapabilityDrop = service.CapDrop
		spec.Sysctls = service.Sysctls

		for name, value := range service.Labels {
			spec.Labels[name] = value
		}

		if service.StopGracePeriod != nil {
			spec.StopGracePeriod = function.Ptr(time.Duration(*service.StopGracePeriod))
		}

		if !function.IsEmptyMap(service.ExtraHosts) {
			// swarm wants "IP hostname", the reverse of the compose file
			hosts := make([]string, 0, len(service.ExtraHosts))
			for name, ips := range service.ExtraHosts {
				for _, ip := range ips {
					hosts = append(hosts, fmt.Sprintf("%s %s", ip, name))
				}
			}
			sort.Strings(hosts)
			spec.Hosts = hosts
		}

		if !function.IsEmptyArray(service.DNS) || !function.IsEmptyArray(service.DNSSearch) {
			spec.DNSConfig = &swarm.DNSConfig{
				Nameservers: service.DNS,
				Search:      service.DNSSearch,
			}
		}

		if !function.IsEmptyMap(service.Ulimits) {
			ulimits := make([]*container.Ulimit, 0, len(service.Ulimits))
			names := make([]string, 0, len(service.Ulimits))
			for name := range service.Ulimits {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				item := service.Ulimits[name]
				ulimit := &container.Ulimit{Name: name}
				if item.Single > 0 {
					ulimit.Soft = int64(item.Single)
					ulimit.Hard = int64(item.Single)
				} else {
					ulimit.Soft = int64(item.Soft)
					ulimit.Hard = int64(item.Hard)
				}
				ulimits = append(ulimits, ulimit)
			}
			spec.Ulimits = ulimits
		}

		if service.HealthCheck != nil {
			spec.Healthcheck = healthConfig(service.HealthCheck)
		}

		if service.Logging != nil && service.Logging.Driver != "" {
			self.serviceSpec.TaskTemplate.LogDriver = &swarm.Driver{
				Name:    service.Logging.Driver,
				Options: service.Logging.Options,
			}
		}

		return nil
	}
}

// WithMounts converts the volume list. Named volumes get the stack
// namespace prefix and label, again following the CLI converter.
func WithMounts(namespace string, volumes []composetypes.ServiceVolumeConfig) Option {
	return func(self *Builder) error {
		if function.IsEmptyArray(volumes) {
			return nil
		}
		mounts := make([]mount.Mount, 0, len(volumes))
		for _, volume := range volumes {
			item := mount.Mount{
				Type:     mount.Type(volume.Type),
				Source:   volume.Source,
				Target:   volume.Target,
				ReadOnly: volume.ReadOnly,
			}
			switch item.Type {
			case mount.TypeBind:
				if volume.Bind != nil {
					item.BindOptions = &mount.BindOptions{
						Propagation:      mount.Propagation(volume.Bind.Propagation),
						CreateMountpoint: volume.Bind.CreateHostPath,
					}
				}
			case mount.TypeVolume:
				if volume.Source != "" {
					item.Source = fmt.Sprintf("%s_%s", namespace, volume.Source)
				}
				item.VolumeOptions = &mount.VolumeOptions{
					Labels: map[string]string{
						define.StackLabelNamespace: namespace,
					},
				}
				if volume.Volume != nil {
					item.VolumeOptions.NoCopy = volume.Volume.NoCopy
				}
			case mount.TypeTmpfs:
				if volume.Tmpfs != nil {
					item.TmpfsOptions = &mount.TmpfsOptions{
						SizeBytes: int64(volume.Tmpfs.Size),
					}
				}
			}
			mounts = append(mounts, item)
		}
		self.serviceSpec.TaskTemplate.ContainerSpec.Mounts = mounts
		return nil
	}
}

// WithDeploy maps the compose deploy block: mode, restart policy,
// resources, update and rollback behavior, placement and service labels.
func WithDeploy(deploy *composetypes.DeployConfig) Option {
	return func(self *Builder) error {
		if deploy == nil {
			self.serviceSpec.Mode = swarm.ServiceMode{
				Replicated: &swarm.ReplicatedService{Replicas: function.Ptr(uint64(1))},
			}
			return nil
		}

		switch deploy.Mode {
		case define.SwarmServiceModeGlobal:
			self.serviceSpec.Mode = swarm.ServiceMode{Global: &swarm.GlobalService{}}
		case define.SwarmServiceModeReplicated, "":
			replicas := uint64(1)
			if deploy.Replicas != nil {
				replicas = uint64(*deploy.Replicas)
			}
			self.serviceSpec.Mode = swarm.ServiceMode{
				Replicated: &swarm.ReplicatedService{Replicas: function.Ptr(replicas)},
			}
		default:
			return fmt.Errorf("unsupported deploy mode %q", deploy.Mode)
		}

		for name, value := range deploy.Labels {
			self.serviceSpec.Labels[name] = value
		}

		if deploy.RestartPolicy != nil {
			policy := &swarm.RestartPolicy{
				Condition: swarm.RestartPolicyCondition(deploy.RestartPolicy.Condition),
			}
			if deploy.RestartPolicy.Delay != nil {
				policy.Delay = function.Ptr(time.Duration(*deploy.RestartPolicy.Delay))
			}
			if deploy.RestartPolicy.MaxAttempts != nil {
				policy.MaxAttempts = deploy.RestartPolicy.MaxAttempts
			}
			if deploy.RestartPolicy.Window != nil {
				policy.Window = function.Ptr(time.Duration(*deploy.RestartPolicy.Window))
			}
			self.serviceSpec.TaskTemplate.RestartPolicy = policy
		}

		if resources := resourceRequirements(deploy.Resources); resources != nil {
			self.serviceSpec.TaskTemplate.Resources = resources
		}

		if deploy.UpdateConfig != nil {
			self.serviceSpec.UpdateConfig = updateConfig(deploy.UpdateConfig)
		}
		if deploy.RollbackConfig != nil {
			self.serviceSpec.RollbackConfig = updateConfig(deploy.RollbackConfig)
		}

		if !function.IsEmptyArray(deploy.Placement.Constraints) {
			self.placement().Constraints = append(self.placement().Constraints, deploy.Placement.Constraints...)
		}
		for _, preference := range deploy.Placement.Preferences {
			self.placement().Preferences = append(self.placement().Preferences, swarm.PlacementPreference{
				Spread: &swarm.SpreadOver{SpreadDescriptor: preference.Spread},
			})
		}

		return nil
	}
}

// WithConstraint pins tasks to the configured node, or to managers when no
// node is named, so every replica lands next to the data root.
func WithConstraint(nodeHostname string) Option {
	return func(self *Builder) error {
		constraint := "node.role==manager"
		if nodeHostname != "" {
			constraint = fmt.Sprintf("node.hostname==%s", nodeHostname)
		}
		if !function.InArray(self.placement().Constraints, constraint) {
			self.placement().Constraints = append(self.placement().Constraints, constraint)
		}
		return nil
	}
}

// WithNetwork attaches the task to a network with the service name as alias
// so cross-service config can address plain "mysql", "redis" and so on.
func WithNetwork(networkName string, aliases ...string) Option {
	return func(self *Builder) error {
		attachment := swarm.NetworkAttachmentConfig{
			Target:  networkName,
			Aliases: aliases,
		}
		self.serviceSpec.TaskTemplate.Networks = append(self.serviceSpec.TaskTemplate.Networks, attachment)
		return nil
	}
}

// WithPorts converts published ports. Swarm cannot express a
// bind address: ingress mode with one set is a config error, host mode logs
// and drops it.
func WithPorts(ports []composetypes.ServicePortConfig) Option {
	return func(self *Builder) error {
		if function.IsEmptyArray(ports) {
			return nil
		}
		result := make([]swarm.PortConfig, 0, len(ports))
		for _, port := range ports {
			mode := swarm.PortConfigPublishModeIngress
			if port.Mode == "host" {
				mode = swarm.PortConfigPublishModeHost
			}
			if port.HostIP != "" && port.HostIP != "0.0.0.0" && port.HostIP != "::" {
				if mode == swarm.PortConfigPublishModeIngress {
					return fmt.Errorf("port %s: a bind address cannot be used with ingress mode publishing", port.Published)
				}
				slog.Warn("swarm cannot bind a host-mode port to one address, publishing on all interfaces", "port", port.Published, "bind", port.HostIP)
			}
			protocol := port.Protocol
			if protocol == "" {
				protocol = "tcp"
			}
			published, err := nat.ParsePort(port.Published)
			if err != nil {
				return fmt.Errorf("port %q: %w", port.Published, err)
			}
			result = append(result, swarm.PortConfig{
				Protocol:      swarm.PortConfigProtocol(protocol),
				TargetPort:    port.Target,
				PublishedPort: uint32(published),
				PublishMode:   mode,
			})
		}
		sort.Slice(result, func(i, j int) bool {
			return result[i].PublishedPort < result[j].PublishedPort
		})
		self.serviceSpec.EndpointSpec = &swarm.EndpointSpec{
			Mode:  swarm.ResolutionModeVIP,
			Ports: result,
		}
		return nil
	}
}

func WithServiceLabels(labels map[string]string) Option {
	return func(self *Builder) error {
		for name, value := range labels {
			self.serviceSpec.Labels[name] = value
		}
		return nil
	}
}

func WithSecrets(refs []*swarm.SecretReference) Option {
	return func(self *Builder) error {
		self.serviceSpec.TaskTemplate.ContainerSpec.Secrets = refs
		return nil
	}
}

func WithConfigs(refs []*swarm.ConfigReference) Option {
	return func(self *Builder) error {
		self.serviceSpec.TaskTemplate.ContainerSpec.Configs = refs
		return nil
	}
}

// WithPlatform restricts scheduling to one platform, from the compose
// service's platform string (os[/arch[/variant]]).
func WithPlatform(platform string) Option {
	return func(self *Builder) error {
		if platform == "" {
			return nil
		}
		parts := strings.Split(platform, "/")
		if len(parts) > 3 {
			return fmt.Errorf("invalid platform %q", platform)
		}
		item := swarm.Platform{OS: parts[0]}
		if len(parts) > 1 {
			item.Architecture = parts[1]
		}
		if len(parts) > 2 {
			item.Architecture = fmt.Sprintf("%s/%s", parts[1], parts[2])
		}
		self.placement().Platforms = append(self.placement().Platforms, item)
		return nil
	}
}

// WithUpdate binds an existing service, Execute then updates in place.
func WithUpdate(existing *swarm.Service) Option {
	return func(self *Builder) error {
		self.Update = existing
		return nil
	}
}

func WithRegistryAuth(code string) Option {
	return func(self *Builder) error {
		self.options.EncodedRegistryAuth = code
		return nil
	}
}

func (self *Builder) placement() *swarm.Placement {
	if self.serviceSpec.TaskTemplate.Placement == nil {
		self.serviceSpec.TaskTemplate.Placement = &swarm.Placement{}
	}
	return self.serviceSpec.TaskTemplate.Placement
}

func sortedEnv(environment composetypes.MappingWithEquals) []string {
	result := make([]string, 0, len(environment))
	for name, value := range environment {
		if value == nil {
			continue
		}
		result = append(result, fmt.Sprintf("%s=%s", name, *value))
	}
	sort.Strings(result)
	return result
}

func healthConfig(check *composetypes.HealthCheckConfig) *container.HealthConfig {
	if check.Disable {
		return &container.HealthConfig{Test: []string{"NONE"}}
	}
	result := &container.HealthConfig{
		Test: check.Test,
	}
	if check.Timeout != nil {
		result.Timeout = time.Duration(*check.Timeout)
	}
	if check.Interval != nil {
		result.Interval = time.Duration(*check.Interval)
	}
	if check.StartPeriod != nil {
		result.StartPeriod = time.Duration(*check.StartPeriod)
	}
	if check.Retries != nil {
		result.Retries = int(*check.Retries)
	}
	return result
}

func updateConfig(config *composetypes.UpdateConfig) *swarm.UpdateConfig {
	result := &swarm.UpdateConfig{
		Parallelism:     1,
		FailureAction:   config.FailureAction,
		Monitor:         time.Duration(config.Monitor),
		MaxFailureRatio: config.MaxFailureRatio,
		Order:           config.Order,
	}
	if config.Parallelism != nil {
		result.Parallelism = *config.Parallelism
	}
	result.Delay = time.Duration(config.Delay)
	return result
}

func resourceRequirements(resources composetypes.Resources) *swarm.ResourceRequirements {
	if resources.Limits == nil && resources.Reservations == nil {
		return nil
	}
	result := &swarm.ResourceRequirements{}
	if resources.Limits != nil {
		result.Limits = &swarm.Limit{
			NanoCPUs:    int64(resources.Limits.NanoCPUs.Value() * 1e9),
			MemoryBytes: int64(resources.Limits.MemoryBytes),
			Pids:        resources.Limits.Pids,
		}
	}
	if resources.Reservations != nil {
		result.Reservations = &swarm.Resources{
			NanoCPUs:    int64(resources.Reservations.NanoCPUs.Value() * 1e9),
			MemoryBytes: int64(resources.Reservations.MemoryBytes),
		}
	}
	return result
}
