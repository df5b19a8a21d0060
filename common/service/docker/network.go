package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/network"

	"github.com/cswni/mailstack/common/function"
	"github.com/cswni/mailstack/common/types/define"
)

type NetworkEnsureOption struct {
	Name       string
	Subnet     string
	Gateway    string
	EnableIPv6 bool
	IPv6Subnet string
	Namespace  string
}

// NetworkEnsure makes the mail overlay network exist with the configured
// shape. An existing network is verified, never recreated: a subnet change
// needs the operator to remove it first because attached services would lose
// their addresses.
func (self *Client) NetworkEnsure(ctx context.Context, option NetworkEnsureOption) (created bool, err error) {
	networkRow, err := self.Client.NetworkInspect(ctx, option.Name, network.InspectOptions{})
	if err == nil {
		if networkRow.Driver != "overlay" {
			return false, fmt.Errorf("network %s exists with driver %s, expected overlay, remove it with `docker network rm %s` first", option.Name, networkRow.Driver, option.Name)
		}
		if !networkRow.Attachable {
			return false, fmt.Errorf("network %s exists but is not attachable, remove it with `docker network rm %s` first", option.Name, option.Name)
		}
		for _, ipam := range networkRow.IPAM.Config {
			if ipam.Subnet != "" && ipam.Subnet != option.Subnet && ipam.Subnet != option.IPv6Subnet {
				return false, fmt.Errorf("network %s exists with subnet %s, config expects %s, remove it with `docker network rm %s` first", option.Name, ipam.Subnet, option.Subnet, option.Name)
			}
		}
		return false, nil
	}

	createOption := network.CreateOptions{
		Driver:     "overlay",
		Attachable: true,
		Labels: map[string]string{
			define.StackLabelNamespace: option.Namespace,
		},
		EnableIPv6: function.Ptr(option.EnableIPv6),
		IPAM: &network.IPAM{
			Driver: "default",
			Config: []network.IPAMConfig{
				{
					Subnet:  option.Subnet,
					Gateway: option.Gateway,
				},
			},
		},
	}
	if option.EnableIPv6 && option.IPv6Subnet != "" {
		createOption.IPAM.Config = append(createOption.IPAM.Config, network.IPAMConfig{
			Subnet: option.IPv6Subnet,
		})
	}
	if _, err = self.Client.NetworkCreate(ctx, option.Name, createOption); err != nil {
		return false, err
	}
	return true, nil
}

// NetworkExists is an inspect-only check, used for the Traefik network the
// stack joins but does not own.
func (self *Client) NetworkExists(ctx context.Context, networkName string) (bool, error) {
	_, err := self.Client.NetworkInspect(ctx, networkName, network.InspectOptions{})
	if err != nil {
		if function.ErrorHasKeyword(err, "not found", "no such network") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (self *Client) NetworkRemove(ctx context.Context, networkName string) error {
	if networkRow, err := self.Client.NetworkInspect(ctx, networkName, network.InspectOptions{}); err == nil {
		for _, item := range networkRow.Containers {
			_ = self.Client.NetworkDisconnect(ctx, networkName, item.Name, true)
		}
		return self.Client.NetworkRemove(ctx, networkName)
	}
	return nil
}
