package logic

import (
	"log/slog"

	"github.com/cswni/mailstack/common/accessor"
	"github.com/cswni/mailstack/common/service/compose"
	"github.com/cswni/mailstack/common/service/config"
	"github.com/cswni/mailstack/common/service/registry"
)

// ResolveImages pins every service image to its current digest so that all
// nodes schedule the exact same build. A registry that cannot be reached
// degrades to the tagged reference with a warning, same as the docker cli
// with --resolve-image=never.
func ResolveImages(cfg *config.Config, wrapper *compose.Wrapper) []accessor.DeploymentImageOption {
	images := make([]accessor.DeploymentImageOption, 0)
	for _, name := range wrapper.ServiceNames() {
		service, _, err := wrapper.GetService(name)
		if err != nil || service.Image == "" {
			continue
		}
		item := accessor.DeploymentImageOption{Service: name, Ref: service.Image}
		if cfg.ResolveImages {
			if pinned, err := registry.PinImage(service.Image); err == nil {
				item.Resolved = pinned
			} else {
				slog.Warn("image digest resolution failed", "service", name, "image", service.Image, "err", err)
			}
		}
		images = append(images, item)
	}
	return images
}

func pinnedRef(images []accessor.DeploymentImageOption, service string) (string, string) {
	for _, item := range images {
		if item.Service == service {
			if item.Resolved != "" {
				return item.Resolved, item.Ref
			}
			return item.Ref, item.Ref
		}
	}
	return "", ""
}
