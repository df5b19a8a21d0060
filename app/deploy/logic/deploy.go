package logic

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cswni/mailstack/common/accessor"
	"github.com/cswni/mailstack/common/dao"
	"github.com/cswni/mailstack/common/entity"
	"github.com/cswni/mailstack/common/function"
	"github.com/cswni/mailstack/common/service/compose"
	"github.com/cswni/mailstack/common/service/config"
	"github.com/cswni/mailstack/common/service/docker"
	swarmbuilder "github.com/cswni/mailstack/common/service/docker/swarm"
	"github.com/cswni/mailstack/common/service/probe"
	"github.com/cswni/mailstack/common/service/ssl"
	"github.com/cswni/mailstack/common/service/storage"
	"github.com/cswni/mailstack/common/types/define"
	composetypes "github.com/compose-spec/compose-go/v2/types"
	"github.com/docker/docker/api/types/swarm"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"gorm.io/datatypes"
)

type Deployer struct {
	Config *config.Config
	Client *docker.Client
	// Progress receives step transitions for cli output, optional.
	Progress func(step, message string)
}

func NewDeployer(cfg *config.Config, client *docker.Client) *Deployer {
	return &Deployer{
		Config: cfg,
		Client: client,
	}
}

func (self *Deployer) step(row *entity.Deployment, step, message string) {
	row.Step = step
	row.Message = message
	_ = dao.Deployment.Save(row)
	slog.Info("deploy step", "run", row.RunID, "step", step, "message", message)
	if self.Progress != nil {
		self.Progress(step, message)
	}
}

// Deploy runs the whole pipeline and journals every transition. The
// returned row carries the final status even when err is non-nil.
func (self *Deployer) Deploy(ctx context.Context) (*entity.Deployment, error) {
	cfg := self.Config
	report := &accessor.DeploymentReportOption{}
	row := &entity.Deployment{
		RunID:      uuid.New().String(),
		StackName:  cfg.StackName,
		ConfigHash: cfg.Hash(),
		Status:     define.DeployStatusRunning,
		Report:     report,
		StartedAt:  time.Now(),
	}
	if err := dao.Deployment.Create(row); err != nil {
		return nil, err
	}
	fail := func(err error) (*entity.Deployment, error) {
		now := time.Now()
		row.Status = define.DeployStatusFailed
		row.Message = err.Error()
		row.FinishedAt = &now
		_ = dao.Deployment.Save(row)
		return row, err
	}

	self.step(row, define.DeployStepPreflight, "")
	results, err := (Preflight{Config: cfg, Client: self.Client}).Run(ctx)
	report.Preflight = results
	if err != nil {
		return fail(err)
	}

	self.step(row, define.DeployStepHookPre, cfg.HookPreDeploy)
	if err = RunHook(ctx, self.Client, "pre-deploy", cfg.HookPreDeploy, cfg); err != nil {
		return fail(err)
	}

	self.step(row, define.DeployStepNetwork, cfg.NetworkName)
	created, err := self.Client.NetworkEnsure(ctx, docker.NetworkEnsureOption{
		Name:       cfg.NetworkName,
		Subnet:     cfg.Subnet(),
		Gateway:    cfg.Gateway(),
		EnableIPv6: cfg.EnableIPv6,
		IPv6Subnet: cfg.IPv6Network,
		Namespace:  cfg.StackName,
	})
	if err != nil {
		return fail(err)
	}
	if created {
		slog.Info("overlay network created", "name", cfg.NetworkName, "subnet", cfg.Subnet())
	}

	self.step(row, define.DeployStepScaffold, cfg.DataRoot)
	hostFs, err := self.Client.Fs()
	if err != nil {
		return fail(err)
	}
	if err = storage.Scaffold(hostFs, cfg.DataRoot); err != nil {
		return fail(err)
	}

	self.step(row, define.DeployStepCertificate, "")
	if err = self.ensureCertificate(ctx, hostFs); err != nil {
		return fail(err)
	}

	self.step(row, define.DeployStepCompose, "")
	wrapper, err := RenderStack(cfg)
	if err != nil {
		return fail(err)
	}
	stackYaml, err := wrapper.Yaml()
	if err != nil {
		return fail(err)
	}
	row.StackHash = function.GetSha256(stackYaml)
	images := ResolveImages(cfg, wrapper)
	row.Images = datatypes.NewJSONSlice(images)

	self.step(row, define.DeployStepServices, "")
	if err = self.deployServices(ctx, wrapper, images); err != nil {
		return fail(err)
	}

	self.step(row, define.DeployStepConverge, "")
	states, err := self.converge(ctx, optionalServices(wrapper))
	report.Services = states
	if err != nil {
		return fail(err)
	}

	if !cfg.SkipProbes {
		self.step(row, define.DeployStepProbe, "")
		prober := probe.New(
			probe.WithTimeout(cfg.ProbeTimeout),
			probe.WithRetries(cfg.ProbeRetries),
		)
		probeReport := prober.Run(ctx, probe.Endpoints(*cfg))
		report.Probe = function.PluckArrayWalk(probeReport.Results, func(item probe.Result) (accessor.DeploymentProbeResult, bool) {
			return accessor.DeploymentProbeResult{
				Name:     item.Endpoint.Name,
				Ok:       item.Ok,
				Required: item.Endpoint.Required,
				Attempts: item.Attempts,
				Latency:  item.Latency,
				Message:  item.Message,
			}, true
		})
		if !probeReport.Ok() {
			failed := function.PluckArrayWalk(probeReport.Failed(), func(item probe.Result) (string, bool) {
				return item.Endpoint.Name, item.Endpoint.Required
			})
			return fail(fmt.Errorf("required endpoints unreachable: %s", strings.Join(failed, ", ")))
		}
	}

	self.step(row, define.DeployStepHookPost, cfg.HookPostDeploy)
	if err = RunHook(ctx, self.Client, "post-deploy", cfg.HookPostDeploy, cfg); err != nil {
		return fail(err)
	}

	now := time.Now()
	row.Status = define.DeployStatusDone
	row.Message = ""
	row.FinishedAt = &now
	if err = dao.Deployment.Save(row); err != nil {
		return row, err
	}
	return row, nil
}

// ensureCertificate generates the self-signed bootstrap material when
// missing or stale and distributes it as swarm secrets.
func (self *Deployer) ensureCertificate(ctx context.Context, hostFs afero.Fs) error {
	cfg := self.Config
	builder, err := ssl.New(
		ssl.WithHostname(cfg.Hostname),
		ssl.WithSanList(cfg.SanList()),
		ssl.WithValidityDays(cfg.CertDays),
		ssl.WithFs(hostFs),
	)
	if err != nil {
		return err
	}
	if needs, reason := builder.NeedsRenewal(cfg.RenewBefore()); needs {
		slog.Info("generating certificate", "reason", reason, "hostname", cfg.Hostname)
		if _, err = builder.Generate(); err != nil {
			return err
		}
	}

	certContent, err := afero.ReadFile(hostFs, storage.Local{}.GetCertPath())
	if err != nil {
		return err
	}
	keyContent, err := afero.ReadFile(hostFs, storage.Local{}.GetCertKeyPath())
	if err != nil {
		return err
	}
	if err = self.Client.SecretEnsure(ctx, docker.StackObjectOption{
		Name:      fmt.Sprintf("%s_cert.pem", cfg.StackName),
		Namespace: cfg.StackName,
		Content:   certContent,
	}); err != nil {
		return err
	}
	return self.Client.SecretEnsure(ctx, docker.StackObjectOption{
		Name:      fmt.Sprintf("%s_key.pem", cfg.StackName),
		Namespace: cfg.StackName,
		Content:   keyContent,
	})
}

func (self *Deployer) deployServices(ctx context.Context, wrapper *compose.Wrapper, images []accessor.DeploymentImageOption) error {
	cfg := self.Config
	existing, err := self.Client.ServiceListByNamespace(ctx, cfg.StackName)
	if err != nil {
		return err
	}
	existingByName := function.PluckArrayMapWalk(existing, func(item swarm.Service) (string, swarm.Service, bool) {
		return item.Spec.Name, item, true
	})

	if err = self.ensureStackConfigs(ctx, wrapper); err != nil {
		return err
	}

	deployed := make(map[string]struct{})
	for _, name := range wrapper.ServiceNames() {
		service, ext, err := wrapper.GetService(name)
		if err != nil {
			return err
		}
		imageRef, originalRef := pinnedRef(images, name)

		secretRefs, err := self.secretRefs(ctx, service.Secrets)
		if err != nil {
			return err
		}
		configRefs, err := self.configRefs(ctx, service.Configs)
		if err != nil {
			return err
		}

		ports := service.Ports
		labels := TraefikLabels(cfg, name, ext)
		if labels != nil {
			// traefik terminates for this service, publishing the ports
			// next to it would only invite conflicts
			ports = nil
		}
		opts := []swarmbuilder.Option{
			swarmbuilder.WithClient(self.Client),
			swarmbuilder.WithName(cfg.StackName, name),
			swarmbuilder.WithImage(imageRef, originalRef),
			swarmbuilder.WithComposeService(service),
			swarmbuilder.WithMounts(cfg.StackName, service.Volumes),
			swarmbuilder.WithDeploy(service.Deploy),
			swarmbuilder.WithNetwork(cfg.NetworkName, name),
			swarmbuilder.WithPorts(ports),
			swarmbuilder.WithConstraint(cfg.DeployNodeHostname),
			swarmbuilder.WithPlatform(service.Platform),
			swarmbuilder.WithSecrets(secretRefs),
			swarmbuilder.WithConfigs(configRefs),
		}
		if labels != nil {
			opts = append(opts, swarmbuilder.WithServiceLabels(labels))
			opts = append(opts, swarmbuilder.WithNetwork(cfg.TraefikNetwork))
		}
		if current, ok := existingByName[fmt.Sprintf("%s_%s", cfg.StackName, name)]; ok {
			opts = append(opts, swarmbuilder.WithUpdate(&current))
		}
		builder, err := swarmbuilder.New(opts...)
		if err != nil {
			return fmt.Errorf("service %s: %w", name, err)
		}
		id, warnings, err := builder.Execute(ctx)
		if err != nil {
			return fmt.Errorf("service %s: %w", name, err)
		}
		for _, warning := range warnings {
			slog.Warn("service deploy warning", "service", name, "warning", warning)
		}
		slog.Info("service deployed", "service", name, "id", id)
		deployed[fmt.Sprintf("%s_%s", cfg.StackName, name)] = struct{}{}
	}

	// services that fell out of the template, a skip toggled on for example
	for specName, service := range existingByName {
		if _, ok := deployed[specName]; ok {
			continue
		}
		slog.Info("removing orphaned service", "service", specName)
		if err = self.Client.Client.ServiceRemove(ctx, service.ID); err != nil {
			return err
		}
	}
	return nil
}

// ensureStackConfigs pushes the swarm configs the template references, the
// nginx vhost for now.
func (self *Deployer) ensureStackConfigs(ctx context.Context, wrapper *compose.Wrapper) error {
	if _, ok := wrapper.Project.Configs["nginx.conf"]; !ok {
		return nil
	}
	content, err := NginxConfContent()
	if err != nil {
		return err
	}
	return self.Client.ConfigEnsure(ctx, docker.StackObjectOption{
		Name:      fmt.Sprintf("%s_nginx.conf", self.Config.StackName),
		Namespace: self.Config.StackName,
		Content:   content,
	})
}

func (self *Deployer) secretRefs(ctx context.Context, refs []composetypes.ServiceSecretConfig) ([]*swarm.SecretReference, error) {
	result := make([]*swarm.SecretReference, 0, len(refs))
	for _, ref := range refs {
		name := fmt.Sprintf("%s_%s", self.Config.StackName, ref.Source)
		secret, _, err := self.Client.Client.SecretInspectWithRaw(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("secret %s: %w", name, err)
		}
		result = append(result, &swarm.SecretReference{
			SecretID:   secret.ID,
			SecretName: name,
			File:       fileTarget(ref.Source, ref.Target, ref.UID, ref.GID, ref.Mode),
		})
	}
	return result, nil
}

func (self *Deployer) configRefs(ctx context.Context, refs []composetypes.ServiceConfigObjConfig) ([]*swarm.ConfigReference, error) {
	result := make([]*swarm.ConfigReference, 0, len(refs))
	for _, ref := range refs {
		name := fmt.Sprintf("%s_%s", self.Config.StackName, ref.Source)
		item, _, err := self.Client.Client.ConfigInspectWithRaw(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", name, err)
		}
		target := fileTarget(ref.Source, ref.Target, ref.UID, ref.GID, ref.Mode)
		result = append(result, &swarm.ConfigReference{
			ConfigID:   item.ID,
			ConfigName: name,
			File: &swarm.ConfigReferenceFileTarget{
				Name: target.Name,
				UID:  target.UID,
				GID:  target.GID,
				Mode: target.Mode,
			},
		})
	}
	return result, nil
}

func fileTarget(source, target, uid, gid string, mode *composetypes.FileMode) *swarm.SecretReferenceFileTarget {
	result := &swarm.SecretReferenceFileTarget{
		Name: target,
		UID:  "0",
		GID:  "0",
		Mode: 0o444,
	}
	if result.Name == "" {
		result.Name = source
	}
	if uid != "" {
		result.UID = uid
	}
	if gid != "" {
		result.GID = gid
	}
	if mode != nil {
		result.Mode = os.FileMode(*mode)
	}
	return result
}

// optionalServices collects the services whose failure should not abort a
// deployment, sogo and friends.
func optionalServices(wrapper *compose.Wrapper) map[string]struct{} {
	optional := make(map[string]struct{})
	for _, name := range wrapper.ServiceNames() {
		if _, ext, err := wrapper.GetService(name); err == nil && !ext.Required {
			optional[name] = struct{}{}
		}
	}
	return optional
}

// converge polls until every required service reaches its desired task
// count or the deploy timeout trips. Optional services only warn.
func (self *Deployer) converge(ctx context.Context, optional map[string]struct{}) ([]accessor.DeploymentServiceState, error) {
	deadline := time.Now().Add(self.Config.DeployTimeout)
	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	var states []accessor.DeploymentServiceState
	var err error
	for {
		states, err = ServiceStates(ctx, self.Client, self.Config)
		if err != nil {
			return states, err
		}
		pending := make([]string, 0)
		for _, state := range states {
			if state.Converged {
				continue
			}
			if _, ok := optional[state.Name]; ok {
				continue
			}
			pending = append(pending, state.Name)
		}
		if len(pending) == 0 {
			for _, state := range states {
				if !state.Converged {
					slog.Warn("optional service not converged", "service", state.Name, "message", state.Message)
				}
			}
			return states, nil
		}
		if time.Now().After(deadline) {
			details := make([]string, 0, len(pending))
			for _, state := range states {
				if state.Converged {
					continue
				}
				if _, ok := optional[state.Name]; ok {
					continue
				}
				detail := fmt.Sprintf("%s %d/%d", state.Name, state.Running, state.Desired)
				if state.Message != "" {
					detail += " (" + state.Message + ")"
				}
				details = append(details, detail)
			}
			return states, fmt.Errorf("services did not converge within %s: %s",
				self.Config.DeployTimeout, strings.Join(details, ", "))
		}
		select {
		case <-ctx.Done():
			return states, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Destroy removes the stack's services, secrets and configs. Volumes and
// the data root stay unless wipe is set, the network goes when nothing
// else is attached to it.
func (self *Deployer) Destroy(ctx context.Context, wipe bool) error {
	cfg := self.Config
	services, err := self.Client.ServiceListByNamespace(ctx, cfg.StackName)
	if err != nil {
		return err
	}
	for _, service := range services {
		slog.Info("removing service", "service", service.Spec.Name)
		if err = self.Client.Client.ServiceRemove(ctx, service.ID); err != nil {
			return err
		}
	}
	if err = self.removeStackObjects(ctx); err != nil {
		return err
	}
	if wipe {
		if err = self.removeStackVolumes(ctx); err != nil {
			return err
		}
	}
	if exists, _ := self.Client.NetworkExists(ctx, cfg.NetworkName); exists {
		if err = self.Client.NetworkRemove(ctx, cfg.NetworkName); err != nil {
			// another stack may still be attached, not fatal
			slog.Warn("network not removed", "name", cfg.NetworkName, "err", err)
		}
	}
	return nil
}

func (self *Deployer) removeStackObjects(ctx context.Context) error {
	cfg := self.Config
	secrets, err := self.Client.StackSecretList(ctx, cfg.StackName)
	if err != nil {
		return err
	}
	for _, secret := range secrets {
		if err = self.Client.Client.SecretRemove(ctx, secret.ID); err != nil {
			return err
		}
	}
	configs, err := self.Client.StackConfigList(ctx, cfg.StackName)
	if err != nil {
		return err
	}
	for _, item := range configs {
		if err = self.Client.Client.ConfigRemove(ctx, item.ID); err != nil {
			return err
		}
	}
	return nil
}

func (self *Deployer) removeStackVolumes(ctx context.Context) error {
	volumes, err := self.Client.StackVolumeList(ctx, self.Config.StackName)
	if err != nil {
		return err
	}
	for _, volume := range volumes {
		slog.Warn("removing volume", "name", volume)
		if err = self.Client.Client.VolumeRemove(ctx, volume, false); err != nil {
			return err
		}
	}
	return nil
}
