// Package registry defines the collaborator interface for tracking
// generated servers. The generation pipeline only reports outcomes;
// persistence and lifecycle management live behind these interfaces and
// are provided by the embedding application.
package registry

// Status is the lifecycle of a generated server as tracked externally:
// created -> building -> ready|error -> archived.
type Status string

const (
	StatusCreated  Status = "created"
	StatusBuilding Status = "building"
	StatusReady    Status = "ready"
	StatusError    Status = "error"
	StatusArchived Status = "archived"
)

// RenderRecord is what the pipeline reports after a render call
type RenderRecord struct {
	ID             string // generated identifier, stable per server
	TemplateName   string
	OutputPath     string
	Success        bool
	GeneratedFiles []string
	Errors         []string
	Warnings       []string
}

// Registry records render outcomes and tracks generated-server status
type Registry interface {
	RecordRender(record RenderRecord) error
	UpdateStatus(id string, status Status) error
}

// ProtocolValidator checks a generated server's wire-protocol compliance
// at runtime. Implementations are out of scope for the generation core.
type ProtocolValidator interface {
	Validate(serverPath string) error
}
