package compose

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/compose-spec/compose-go/v2/cli"
	"github.com/compose-spec/compose-go/v2/types"

	"github.com/cswni/mailstack/common/function"
)

func WithYamlPath(path string) cli.ProjectOptionsFn {
	return func(options *cli.ProjectOptions) error {
		options.ConfigPaths = append(options.ConfigPaths, path)
		return nil
	}
}

// WithYamlContent loads compose yaml from memory, the embedded stack
// template mostly. compose-go wants a file, so it gets one.
func WithYamlContent(name string, yaml []byte) cli.ProjectOptionsFn {
	return func(options *cli.ProjectOptions) error {
		file, err := os.CreateTemp("", fmt.Sprintf("mailstack-%s-*.yaml", name))
		if err != nil {
			return err
		}
		defer func() {
			_ = file.Close()
		}()
		if _, err = file.Write(yaml); err != nil {
			return err
		}
		options.ConfigPaths = append(options.ConfigPaths, file.Name())
		return nil
	}
}

// WithEnv supplies the interpolation variables, the deployment config
// flattened back to its env schema.
func WithEnv(env map[string]string) cli.ProjectOptionsFn {
	return func(options *cli.ProjectOptions) error {
		if options.Environment == nil {
			options.Environment = types.Mapping{}
		}
		for name, value := range env {
			options.Environment[name] = value
		}
		return nil
	}
}

func NewCompose(projectName string, opts ...cli.ProjectOptionsFn) (*Wrapper, error) {
	opts = append(opts,
		cli.WithName(projectName),
		cli.WithExtension(ExtensionServiceName, ExtService{}),
	)
	options, err := cli.NewProjectOptions(
		[]string{},
		opts...,
	)
	if err != nil {
		return nil, err
	}

	project, err := options.LoadProject(context.Background())
	if err != nil {
		return nil, err
	}
	return &Wrapper{Project: project}, nil
}

type Wrapper struct {
	Project *types.Project
}

// GetService returns the service together with its x-mailstack extension.
func (self Wrapper) GetService(name string) (types.ServiceConfig, ExtService, error) {
	service, err := self.Project.GetService(name)
	if err != nil {
		return types.ServiceConfig{}, ExtService{}, err
	}

	ext := ExtService{}
	exists, err := service.Extensions.Get(ExtensionServiceName, &ext)
	if err == nil && exists {
		return service, ext, nil
	}
	return service, ExtService{}, nil
}

// ServiceNames lists services in stable order.
func (self Wrapper) ServiceNames() []string {
	names := make([]string, 0, len(self.Project.Services))
	for name := range self.Project.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FilterSkipped drops services whose skippable_by key is active and then
// verifies no surviving service still depends on a removed one.
func (self *Wrapper) FilterSkipped(activeSkips []string) error {
	removedBy := make(map[string]string)
	for name := range self.Project.Services {
		_, ext, err := self.GetService(name)
		if err != nil {
			return err
		}
		if ext.SkippableBy != "" && function.InArray(activeSkips, ext.SkippableBy) {
			removedBy[name] = ext.SkippableBy
		}
	}
	if function.IsEmptyMap(removedBy) {
		return nil
	}
	for name := range removedBy {
		delete(self.Project.Services, name)
	}
	for name, service := range self.Project.Services {
		for dependency := range service.DependsOn {
			if key, ok := removedBy[dependency]; ok {
				return fmt.Errorf("service %s depends on %s, which is disabled by %s=y", name, dependency, key)
			}
		}
	}
	return nil
}

// Yaml marshals the resolved project, stack:render output.
func (self Wrapper) Yaml() ([]byte, error) {
	return self.Project.MarshalYAML()
}
