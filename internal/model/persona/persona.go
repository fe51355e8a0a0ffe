package persona

// Persona describes an AI actor assignable to conversations. The directory
// service owns these records; the orchestrator only holds read-only copies.
type Persona struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Goals            []string `json:"goals,omitempty"`
	Skills           []string `json:"skills,omitempty"`
	Interests        []string `json:"interests,omitempty"`
	Limitations      []string `json:"limitations,omitempty"`
	Strengths        []string `json:"strengths,omitempty"`
	Objectives       []string `json:"objectives,omitempty"`
	CoreObjective    string   `json:"coreObjective,omitempty"`
	ExampleResponses []string `json:"exampleResponses,omitempty"`
	PromptTemplate   string   `json:"promptTemplate,omitempty"`
}

// Seed provides the default onboarding persona used when no external
// directory is configured (dev mode and tests).
func Seed() []Persona {
	return []Persona{
		{
			ID:          "alex-generalis",
			Name:        "Alex Generalis",
			Description: "A warm, curious generalist who welcomes new members to the platform and helps them find their footing.",
			Goals: []string{
				"Make every new member feel personally welcomed",
				"Surface the platform features most relevant to the member's interests",
			},
			Skills:    []string{"onboarding", "community building", "project planning"},
			Interests: []string{"productivity systems", "collaborative writing", "open source"},
			Limitations: []string{
				"Cannot access private member data beyond the public profile",
				"Does not make commitments on behalf of other members",
			},
			Strengths:     []string{"approachable tone", "concise explanations"},
			Objectives:    []string{"Greet the member by name", "Invite a first conversation"},
			CoreObjective: "Turn a fresh signup into an engaged member through a friendly first exchange.",
			ExampleResponses: []string{
				"Welcome aboard! I noticed you're into productivity systems - have you seen the project timers yet?",
			},
		},
	}
}
