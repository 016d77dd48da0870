// Package scenario defines the built-in practice scenarios.
package scenario

// Special scenario IDs.
const (
	AgentID  = "agent"  // task supplied by the learning plan
	CustomID = "custom" // free-form scenario described by the learner
)

// Scenario describes one practice setting: what the conversation is about
// and how the assistant opens it.
type Scenario struct {
	ID          string
	Title       string
	Description string
	Opening     string
}

// catalog matches the scenario set the dialogue prompts are tuned for.
var catalog = []Scenario{
	{
		ID:          "1",
		Title:       "Job Interview",
		Description: "Practice answering common job interview questions",
		Opening:     "Hello! I'm your speaking partner. What position are you interviewing for today?",
	},
	{
		ID:          "2",
		Title:       "Daily Conversation",
		Description: "Practice everyday conversations in English",
		Opening:     "Hi! Let's practice daily conversation. How's your day so far?",
	},
	{
		ID:          "3",
		Title:       "Business Meeting",
		Description: "Practice participating in business meetings",
		Opening:     "Welcome to the meeting. Could you share your project update?",
	},
	{
		ID:          "4",
		Title:       "Travel Situations",
		Description: "Practice conversations you might have while traveling",
		Opening:     "You're at the airport check-in. May I see your passport, please?",
	},
}

// All returns the built-in scenario catalog in display order.
func All() []Scenario {
	out := make([]Scenario, len(catalog))
	copy(out, catalog)
	return out
}

// ByID resolves a scenario ID to its definition. Unknown IDs (including
// AgentID and CustomID) fall back to a custom scenario so a session can
// always start.
func ByID(id string) Scenario {
	for _, s := range catalog {
		if s.ID == id {
			return s
		}
	}
	switch id {
	case AgentID:
		return Scenario{
			ID:      AgentID,
			Title:   "My Plan",
			Opening: "Let's continue with your personalized practice. Ready?",
		}
	default:
		return Scenario{
			ID:      CustomID,
			Title:   "Custom Scenario",
			Opening: "Hi! Describe the scenario you'd like to practice.",
		}
	}
}

// Title resolves an ID to its display title.
func Title(id string) string {
	return ByID(id).Title
}

// ByTitle finds a scenario by its display title, falling back to Daily
// Conversation. The planner names scenarios by title, not ID.
func ByTitle(title string) Scenario {
	for _, s := range catalog {
		if s.Title == title {
			return s
		}
	}
	return catalog[1]
}
