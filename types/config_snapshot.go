package types

import "time"

// EffectiveConfigSnapshot represents the effective runtime configuration grouped by domain.
type EffectiveConfigSnapshot struct {
	Engine    EngineConfigSnapshot    `json:"engine"`
	Selection SelectionConfigSnapshot `json:"selection"`
	Execution ExecutionConfigSnapshot `json:"execution"`
	Paths     PathsConfigSnapshot     `json:"paths"`

	RunID string `json:"runId,omitempty"`
}

type EngineConfigSnapshot struct {
	Configurator string   `json:"configurator"`
	GoBinary     string   `json:"goBinary"`
	BasicEvents  bool     `json:"basicEvents"`
	Options      []string `json:"options"`
}

type SelectionConfigSnapshot struct {
	Groups         string `json:"groups,omitempty"`
	ExcludedGroups string `json:"excludedGroups,omitempty"`
	MethodPattern  string `json:"methodPattern,omitempty"`
}

type ExecutionConfigSnapshot struct {
	RunInterval time.Duration `json:"runInterval"`
	RunOnce     bool          `json:"runOnce"`
}

type PathsConfigSnapshot struct {
	WorkDir    string   `json:"workDir"`
	SourceDir  string   `json:"sourceDir,omitempty"`
	ReportsDir string   `json:"reportsDir"`
	Catalog    string   `json:"catalog,omitempty"`
	SuiteFiles []string `json:"suiteFiles,omitempty"`
}
