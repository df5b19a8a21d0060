package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/volume"

	"github.com/cswni/mailstack/common/function"
	"github.com/cswni/mailstack/common/types/define"
)

// StackVolumeList returns the names of named volumes created for the
// namespace, the mail spools and databases live in these.
func (self *Client) StackVolumeList(ctx context.Context, namespace string) ([]string, error) {
	filter := filters.NewArgs()
	filter.Add("label", fmt.Sprintf("%s=%s", define.StackLabelNamespace, namespace))
	list, err := self.Client.VolumeList(ctx, volume.ListOptions{Filters: filter})
	if err != nil {
		return nil, err
	}
	return function.PluckArrayWalk(list.Volumes, func(item *volume.Volume) (string, bool) {
		if item == nil {
			return "", false
		}
		return item.Name, true
	}), nil
}
