package agents

import "github.com/recipepocket/content-agent/internal/llm"

// Role identifies one agent of the pipeline. The role selects the prompt
// template and the model tier.
type Role string

// Pipeline agent roles.
const (
	RoleAnalyst    Role = "analyst"
	RoleMarketer   Role = "marketer"
	RoleWriter     Role = "writer"
	RoleDesigner   Role = "designer"
	RoleController Role = "controller"
)

// Template keys that are not roles of their own: the writer's revision pass
// and the monthly report analysis reuse existing agents with other prompts.
const (
	keyWriterRevision = "writer_revision"
	keyMonthlyReport  = "monthly_report"
)

// tierFor maps a role to the model tier it runs on. Analysis and long-form
// writing need the strongest model; the rest run on the standard tier.
func tierFor(role Role) llm.ModelTier {
	switch role {
	case RoleAnalyst, RoleWriter:
		return llm.TierAdvanced
	default:
		return llm.TierStandard
	}
}
