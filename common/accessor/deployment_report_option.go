package accessor

import "time"

type DeploymentReportOption struct {
	Preflight []DeploymentCheckResult  `json:"preflight,omitempty"`
	Probe     []DeploymentProbeResult  `json:"probe,omitempty"`
	Services  []DeploymentServiceState `json:"services,omitempty"`
}

type DeploymentCheckResult struct {
	Name    string `json:"name"`
	Ok      bool   `json:"ok"`
	Fatal   bool   `json:"fatal,omitempty"`
	Message string `json:"message,omitempty"`
}

type DeploymentProbeResult struct {
	Name     string        `json:"name"`
	Ok       bool          `json:"ok"`
	Required bool          `json:"required"`
	Attempts int           `json:"attempts,omitempty"`
	Latency  time.Duration `json:"latency,omitempty"`
	Message  string        `json:"message,omitempty"`
}

type DeploymentServiceState struct {
	Name     string `json:"name"`
	Image    string `json:"image,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Running  int    `json:"running"`
	Desired  int    `json:"desired"`
	Message  string `json:"message,omitempty"`
	Converged bool  `json:"converged"`
}
