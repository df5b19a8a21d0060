package accessor

type DeploymentImageOption struct {
	Service string `json:"service"`
	Ref     string `json:"ref"`
	// Digest-pinned form actually handed to the scheduler, empty when
	// resolution was skipped or failed.
	Resolved string `json:"resolved,omitempty"`
}
