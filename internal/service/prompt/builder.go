package prompt

import (
	"fmt"
	"strings"

	"github.com/cjrutherford/tanuki-orchestrator/internal/model/chat"
	"github.com/cjrutherford/tanuki-orchestrator/internal/model/persona"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/gateway"
)

// SidePayloadDelimiter separates the human-facing welcome message from the
// machine-parsable block the model is instructed to append.
const SidePayloadDelimiter = "---"

const summarizeInstructions = `Summarize the conversation below in your own voice. Preserve every piece of information: names, decisions, dates, and commitments. Minimize length. Finish with a line of comma-separated keywords.`

// Builder assembles prompts for the orchestration workflows. It is pure:
// identical inputs always produce identical requests. The model identifier
// and stream flag come from configuration, never from callers.
type Builder struct {
	model  string
	stream bool
}

// New returns a Builder bound to the configured model.
func New(model string, stream bool) *Builder {
	return &Builder{model: model, stream: stream}
}

// SystemMessage renders a persona's structured attributes into instruction
// prose. Sections appear in a fixed order; empty attributes are skipped.
func (b *Builder) SystemMessage(p persona.Persona) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are %s.", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&sb, " %s", p.Description)
	}
	sb.WriteString("\n")

	writeSection(&sb, "Goals", p.Goals)
	writeSection(&sb, "Skills", p.Skills)
	writeSection(&sb, "Interests", p.Interests)
	writeSection(&sb, "Limitations", p.Limitations)
	writeSection(&sb, "Strengths", p.Strengths)
	writeSection(&sb, "Objectives", p.Objectives)

	if p.CoreObjective != "" {
		fmt.Fprintf(&sb, "\nCore objective: %s\n", p.CoreObjective)
	}
	writeSection(&sb, "Example responses", p.ExampleResponses)

	if p.PromptTemplate != "" {
		fmt.Fprintf(&sb, "\n%s\n", p.PromptTemplate)
	}

	sb.WriteString("\nStay in character at all times and respond as this persona would.")
	return sb.String()
}

// Welcome builds the new-profile greeting prompt. The system turn instructs
// the model to append a structured block after the delimiter; the user turn
// is a fixed-shape greeting referencing the profile's display name.
func (b *Builder) Welcome(systemMessage, displayName string) gateway.Request {
	system := systemMessage + fmt.Sprintf(`

After your welcome message, output the literal line %q followed by a JSON object describing the goals, skills, and interests you suggested, e.g. {"goals":[],"skills":[],"interests":[]}.`, SidePayloadDelimiter)

	user := fmt.Sprintf("A new member named %s just joined the platform. Write them a short, personal welcome message inviting them to start their first conversation.", displayName)

	return b.request(system, user)
}

// Response builds the conversation-turn prompt: persona instruction plus the
// persona-voiced history summary in the system turn, the latest message as
// the user turn.
func (b *Builder) Response(systemMessage, summary, lastMessage string) gateway.Request {
	system := systemMessage
	if summary != "" {
		system += "\n\nConversation so far, summarized:\n" + summary
	}
	return b.request(system, lastMessage)
}

// Summarize builds the history-compression prompt. Prior messages are joined
// chronologically with blank-line separators.
func (b *Builder) Summarize(systemMessage string, history []chat.Message) gateway.Request {
	system := systemMessage + "\n\n" + summarizeInstructions

	contents := make([]string, 0, len(history))
	for _, msg := range history {
		contents = append(contents, msg.Content)
	}

	return b.request(system, strings.Join(contents, "\n\n"))
}

func (b *Builder) request(system, user string) gateway.Request {
	return gateway.Request{
		Model:  b.model,
		Stream: b.stream,
		Messages: []gateway.Turn{
			{Role: gateway.RoleSystem, Content: system},
			{Role: gateway.RoleUser, Content: user},
		},
	}
}

func writeSection(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
}
