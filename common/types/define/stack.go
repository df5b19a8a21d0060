package define

const (
	// StackLabelNamespace groups every object of one deployment, the same
	// label the docker CLI writes so our stacks stay compatible with
	// `docker stack ls` and friends.
	StackLabelNamespace = "com.docker.stack.namespace"
	StackLabelImage     = "com.docker.stack.image"
	StackLabelConfig    = "com.mailstack.config.hash"

	SwarmServiceModeGlobal     = "global"
	SwarmServiceModeReplicated = "replicated"
)

const (
	DeployStepPreflight   = "preflight"
	DeployStepHookPre     = "hook-pre"
	DeployStepNetwork     = "network"
	DeployStepScaffold    = "scaffold"
	DeployStepCertificate = "certificate"
	DeployStepCompose     = "compose"
	DeployStepServices    = "services"
	DeployStepConverge    = "converge"
	DeployStepProbe       = "probe"
	DeployStepHookPost    = "hook-post"
)

const (
	DeployStatusRunning = "running"
	DeployStatusDone    = "done"
	DeployStatusFailed  = "failed"
)
