package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/swarm"

	"github.com/cswni/mailstack/common/types/define"
)

var (
	ErrSwarmInactive  = errors.New("this node is not part of a swarm, run `mailstack swarm:init` first")
	ErrSwarmNotManager = errors.New("this node is not a swarm manager, deploys must run against a manager")
)

// SwarmManagerCheck verifies the engine is an active swarm manager.
func (self *Client) SwarmManagerCheck(ctx context.Context) error {
	info, err := self.Client.Info(ctx)
	if err != nil {
		return err
	}
	if info.Swarm.LocalNodeState == swarm.LocalNodeStateInactive {
		return ErrSwarmInactive
	}
	if !info.Swarm.ControlAvailable {
		return ErrSwarmNotManager
	}
	return nil
}

// SwarmEnsure initializes a single node swarm when the engine is not part
// of one yet. An engine that is already a manager is left alone, a worker
// is an error the operator has to resolve.
func (self *Client) SwarmEnsure(ctx context.Context, advertiseAddr string) (created bool, nodeId string, err error) {
	info, err := self.Client.Info(ctx)
	if err != nil {
		return false, "", err
	}
	if info.Swarm.LocalNodeState != swarm.LocalNodeStateInactive {
		if !info.Swarm.ControlAvailable {
			return false, "", ErrSwarmNotManager
		}
		return false, info.Swarm.NodeID, nil
	}
	nodeId, err = self.Client.SwarmInit(ctx, swarm.InitRequest{
		ListenAddr:    "0.0.0.0:2377",
		AdvertiseAddr: advertiseAddr,
	})
	if err != nil {
		return false, "", err
	}
	return true, nodeId, nil
}

// ServiceListByNamespace lists the stack's services by namespace label.
func (self *Client) ServiceListByNamespace(ctx context.Context, namespace string) ([]swarm.Service, error) {
	filter := filters.NewArgs()
	filter.Add("label", fmt.Sprintf("%s=%s", define.StackLabelNamespace, namespace))
	list, err := self.Client.ServiceList(ctx, swarm.ServiceListOptions{
		Filters: filter,
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Spec.Name < list[j].Spec.Name
	})
	return list, nil
}

// TaskListByService returns the tasks of one service, newest first.
func (self *Client) TaskListByService(ctx context.Context, serviceId string) ([]swarm.Task, error) {
	filter := filters.NewArgs()
	filter.Add("service", serviceId)
	list, err := self.Client.TaskList(ctx, swarm.TaskListOptions{
		Filters: filter,
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// ReadyNodeCount counts nodes able to run global service tasks.
func (self *Client) ReadyNodeCount(ctx context.Context) (int, error) {
	nodes, err := self.Client.NodeList(ctx, swarm.NodeListOptions{})
	if err != nil {
		return 0, err
	}
	count := 0
	for _, node := range nodes {
		if node.Status.State == swarm.NodeStateReady && node.Spec.Availability == swarm.NodeAvailabilityActive {
			count++
		}
	}
	return count, nil
}

type ServiceLogsOption struct {
	Tail       string
	Follow     bool
	Timestamps bool
}

func (self *Client) ServiceLogs(ctx context.Context, serviceName string, option ServiceLogsOption) (io.ReadCloser, error) {
	return self.Client.ServiceLogs(ctx, serviceName, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       option.Tail,
		Follow:     option.Follow,
		Timestamps: option.Timestamps,
	})
}
