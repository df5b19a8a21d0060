package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/swarm"

	"github.com/cswni/mailstack/common/function"
	"github.com/cswni/mailstack/common/types/define"
)

type StackObjectOption struct {
	Name      string // already namespaced, <stack>_<name>
	Namespace string
	Content   []byte
}

// SecretEnsure creates or replaces a swarm secret. The content hash rides in
// a label, on change the old secret is removed first because swarm secrets
// are immutable.
func (self *Client) SecretEnsure(ctx context.Context, option StackObjectOption) error {
	contentHash := function.GetSha256(option.Content)
	annotations := swarm.Annotations{
		Name: option.Name,
		Labels: map[string]string{
			define.StackLabelNamespace: option.Namespace,
			define.StackLabelConfig:    contentHash,
		},
	}

	filter := filters.NewArgs()
	filter.Add("name", option.Name)
	list, err := self.Client.SecretList(ctx, swarm.SecretListOptions{Filters: filter})
	if err != nil {
		return err
	}
	for _, item := range list {
		if item.Spec.Name != option.Name {
			continue
		}
		if item.Spec.Labels[define.StackLabelConfig] == contentHash {
			return nil
		}
		if err = self.Client.SecretRemove(ctx, item.ID); err != nil {
			return fmt.Errorf("replace secret %s: %w", option.Name, err)
		}
	}

	_, err = self.Client.SecretCreate(ctx, swarm.SecretSpec{
		Annotations: annotations,
		Data:        option.Content,
	})
	return err
}

// ConfigEnsure is SecretEnsure for swarm configs.
func (self *Client) ConfigEnsure(ctx context.Context, option StackObjectOption) error {
	contentHash := function.GetSha256(option.Content)
	annotations := swarm.Annotations{
		Name: option.Name,
		Labels: map[string]string{
			define.StackLabelNamespace: option.Namespace,
			define.StackLabelConfig:    contentHash,
		},
	}

	filter := filters.NewArgs()
	filter.Add("name", option.Name)
	list, err := self.Client.ConfigList(ctx, swarm.ConfigListOptions{Filters: filter})
	if err != nil {
		return err
	}
	for _, item := range list {
		if item.Spec.Name != option.Name {
			continue
		}
		if item.Spec.Labels[define.StackLabelConfig] == contentHash {
			return nil
		}
		if err = self.Client.ConfigRemove(ctx, item.ID); err != nil {
			return fmt.Errorf("replace config %s: %w", option.Name, err)
		}
	}

	_, err = self.Client.ConfigCreate(ctx, swarm.ConfigSpec{
		Annotations: annotations,
		Data:        option.Content,
	})
	return err
}

// StackSecretList returns every secret labeled with the namespace.
func (self *Client) StackSecretList(ctx context.Context, namespace string) ([]swarm.Secret, error) {
	filter := filters.NewArgs()
	filter.Add("label", fmt.Sprintf("%s=%s", define.StackLabelNamespace, namespace))
	return self.Client.SecretList(ctx, swarm.SecretListOptions{Filters: filter})
}

// StackConfigList returns every config labeled with the namespace.
func (self *Client) StackConfigList(ctx context.Context, namespace string) ([]swarm.Config, error) {
	filter := filters.NewArgs()
	filter.Add("label", fmt.Sprintf("%s=%s", define.StackLabelNamespace, namespace))
	return self.Client.ConfigList(ctx, swarm.ConfigListOptions{Filters: filter})
}

// SecretExists reports whether an external secret is present.
func (self *Client) SecretExists(ctx context.Context, name string) (bool, error) {
	filter := filters.NewArgs()
	filter.Add("name", name)
	list, err := self.Client.SecretList(ctx, swarm.SecretListOptions{Filters: filter})
	if err != nil {
		return false, err
	}
	for _, item := range list {
		if item.Spec.Name == name {
			return true, nil
		}
	}
	return false, nil
}
