package swarm

import (
	"context"

	"github.com/docker/docker/api/types/swarm"

	"github.com/cswni/mailstack/common/service/docker"
)

func New(opts ...Option) (*Builder, error) {
	var err error
	c := &Builder{
		serviceSpec: swarm.ServiceSpec{
			Annotations: swarm.Annotations{
				Labels: map[string]string{},
			},
			TaskTemplate: swarm.TaskSpec{
				ContainerSpec: &swarm.ContainerSpec{
					Labels: map[string]string{},
				},
			},
			Mode:         swarm.ServiceMode{},
			EndpointSpec: &swarm.EndpointSpec{},
		},
		options: swarm.ServiceUpdateOptions{},
	}
	for _, opt := range opts {
		err = opt(c)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

type Builder struct {
	serviceSpec swarm.ServiceSpec
	options     swarm.ServiceUpdateOptions
	Update      *swarm.Service
	client      *docker.Client
}

// Spec exposes the assembled spec, tests and the render command use it.
func (self *Builder) Spec() swarm.ServiceSpec {
	return self.serviceSpec
}

// Execute creates the service, or replaces the spec wholesale when an
// existing service was bound with WithUpdate. The version CAS is swarm's,
// a lost race surfaces as an "update out of sequence" error.
func (self *Builder) Execute(ctx context.Context) (string, []string, error) {
	if self.Update != nil {
		response, err := self.client.Client.ServiceUpdate(ctx, self.Update.ID, self.Update.Version, self.serviceSpec, self.options)
		if err != nil {
			return self.Update.ID, nil, err
		}
		return self.Update.ID, response.Warnings, nil
	}
	response, err := self.client.Client.ServiceCreate(
		ctx,
		self.serviceSpec,
		swarm.ServiceCreateOptions{
			EncodedRegistryAuth: self.options.EncodedRegistryAuth,
			QueryRegistry:       self.options.QueryRegistry,
		},
	)
	if err != nil {
		return "", nil, err
	}
	return response.ID, response.Warnings, nil
}
