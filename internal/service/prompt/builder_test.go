package prompt_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/cjrutherford/tanuki-orchestrator/internal/model/chat"
	"github.com/cjrutherford/tanuki-orchestrator/internal/model/persona"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/gateway"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/prompt"
)

func testPersona() persona.Persona {
	return persona.Persona{
		ID:            "alex-generalis",
		Name:          "Alex Generalis",
		Description:   "A warm generalist.",
		Goals:         []string{"welcome new members"},
		Skills:        []string{"onboarding"},
		Interests:     []string{"productivity"},
		CoreObjective: "Turn signups into engaged members.",
	}
}

func TestSystemMessageDeterministic(t *testing.T) {
	b := prompt.New("llama3.1", false)
	p := testPersona()

	first := b.SystemMessage(p)
	second := b.SystemMessage(p)

	if first != second {
		t.Fatal("identical persona input must yield identical system message")
	}
	if !strings.Contains(first, "You are Alex Generalis.") {
		t.Fatalf("system message missing persona identity: %q", first)
	}
	if !strings.Contains(first, "welcome new members") {
		t.Fatalf("system message missing goals: %q", first)
	}
	if !strings.Contains(first, "Core objective: Turn signups into engaged members.") {
		t.Fatalf("system message missing core objective: %q", first)
	}
}

func TestSystemMessageIncludesPromptTemplate(t *testing.T) {
	b := prompt.New("llama3.1", false)
	p := testPersona()
	p.PromptTemplate = "Always answer with a question."

	if !strings.Contains(b.SystemMessage(p), "Always answer with a question.") {
		t.Fatal("persona prompt template must be rendered")
	}
}

func TestWelcomeShape(t *testing.T) {
	b := prompt.New("test-model", false)
	req := b.Welcome("SYSTEM", "Test User")

	if req.Model != "test-model" {
		t.Fatalf("unexpected model: %q", req.Model)
	}
	if req.Stream {
		t.Fatal("welcome prompts never stream")
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected system+user turns, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != gateway.RoleSystem || !strings.Contains(req.Messages[0].Content, prompt.SidePayloadDelimiter) {
		t.Fatalf("system turn missing side payload instruction: %q", req.Messages[0].Content)
	}
	if req.Messages[1].Role != gateway.RoleUser || !strings.Contains(req.Messages[1].Content, "Test User") {
		t.Fatalf("user turn missing display name: %q", req.Messages[1].Content)
	}
}

func TestResponseEmbedsSummaryAndLastMessage(t *testing.T) {
	b := prompt.New("test-model", false)
	req := b.Response("SYSTEM", "the summary so far", "what do you think?")

	if !strings.Contains(req.Messages[0].Content, "the summary so far") {
		t.Fatalf("system turn missing summary: %q", req.Messages[0].Content)
	}
	if req.Messages[1].Content != "what do you think?" {
		t.Fatalf("user turn must be the last message verbatim: %q", req.Messages[1].Content)
	}
}

func TestResponseWithoutSummary(t *testing.T) {
	b := prompt.New("test-model", false)
	req := b.Response("SYSTEM", "", "hi")

	if req.Messages[0].Content != "SYSTEM" {
		t.Fatalf("empty summary must leave system turn untouched: %q", req.Messages[0].Content)
	}
}

func TestSummarizeJoinsHistoryChronologically(t *testing.T) {
	b := prompt.New("test-model", false)
	history := []chat.Message{
		{Content: "first"},
		{Content: "second"},
		{Content: "third"},
	}

	req := b.Summarize("SYSTEM", history)

	if req.Messages[1].Content != "first\n\nsecond\n\nthird" {
		t.Fatalf("history must join with blank lines in order: %q", req.Messages[1].Content)
	}
	if !strings.Contains(req.Messages[0].Content, "Preserve every piece of information") {
		t.Fatalf("system turn missing summarization directives: %q", req.Messages[0].Content)
	}
}

func TestBuildPromptIdempotent(t *testing.T) {
	b := prompt.New("test-model", false)
	history := []chat.Message{{Content: "a"}, {Content: "b"}}

	first := b.Summarize("SYSTEM", history)
	second := b.Summarize("SYSTEM", history)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs must produce structurally identical requests")
	}

	w1 := b.Welcome("SYSTEM", "Test User")
	w2 := b.Welcome("SYSTEM", "Test User")
	if !reflect.DeepEqual(w1, w2) {
		t.Fatal("welcome prompt must not embed timestamps or randomness")
	}
}
