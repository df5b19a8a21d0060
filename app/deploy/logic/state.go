package logic

import (
	"context"
	"fmt"
	"strings"

	"github.com/cswni/mailstack/common/accessor"
	"github.com/cswni/mailstack/common/service/config"
	"github.com/cswni/mailstack/common/service/docker"
	"github.com/cswni/mailstack/common/types/define"
	"github.com/docker/docker/api/types/swarm"
)

// ServiceStates summarizes the stack the way `docker stack ps` would,
// desired versus running per service with the most recent task error.
func ServiceStates(ctx context.Context, client *docker.Client, cfg *config.Config) ([]accessor.DeploymentServiceState, error) {
	services, err := client.ServiceListByNamespace(ctx, cfg.StackName)
	if err != nil {
		return nil, err
	}
	nodeCount := 0
	states := make([]accessor.DeploymentServiceState, 0, len(services))
	for _, service := range services {
		state := accessor.DeploymentServiceState{
			Name:  strings.TrimPrefix(service.Spec.Name, cfg.StackName+"_"),
			Image: service.Spec.TaskTemplate.ContainerSpec.Image,
		}
		if service.Spec.Mode.Global != nil {
			state.Mode = define.SwarmServiceModeGlobal
			if nodeCount == 0 {
				if nodeCount, err = client.ReadyNodeCount(ctx); err != nil {
					return nil, err
				}
			}
			state.Desired = nodeCount
		} else {
			state.Mode = define.SwarmServiceModeReplicated
			state.Desired = 1
			if service.Spec.Mode.Replicated != nil && service.Spec.Mode.Replicated.Replicas != nil {
				state.Desired = int(*service.Spec.Mode.Replicated.Replicas)
			}
		}
		tasks, err := client.TaskListByService(ctx, service.ID)
		if err != nil {
			return nil, err
		}
		for _, task := range tasks {
			if task.DesiredState != swarm.TaskStateRunning {
				continue
			}
			if task.Status.State == swarm.TaskStateRunning {
				state.Running++
			} else if state.Message == "" && task.Status.Err != "" {
				state.Message = fmt.Sprintf("%s: %s", task.Status.State, task.Status.Err)
			}
		}
		state.Converged = state.Running >= state.Desired
		states = append(states, state)
	}
	return states, nil
}
