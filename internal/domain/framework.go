package domain

// Framework is a static prompt-structuring template.
type Framework struct {
	Acronym     string
	Name        string
	Components  []string
	Description string
}

// Frameworks is the built-in framework catalog. The DRAFT sentinel is not
// listed here; it marks saves where no framework has been applied yet.
var Frameworks = []Framework{
	{
		Acronym:     "CO-STAR",
		Name:        "Context, Objective, Style, Tone, Audience, Response",
		Components:  []string{"Context", "Objective", "Style", "Tone", "Audience", "Response"},
		Description: "General-purpose framework for well-scoped prompts",
	},
	{
		Acronym:     "RACE",
		Name:        "Role, Action, Context, Expectation",
		Components:  []string{"Role", "Action", "Context", "Expectation"},
		Description: "Role-driven tasks with a clear deliverable",
	},
	{
		Acronym:     "APE",
		Name:        "Action, Purpose, Expectation",
		Components:  []string{"Action", "Purpose", "Expectation"},
		Description: "Short imperative prompts",
	},
	{
		Acronym:     "CRISPE",
		Name:        "Capacity, Role, Insight, Statement, Personality, Experiment",
		Components:  []string{"Capacity", "Role", "Insight", "Statement", "Personality", "Experiment"},
		Description: "Exploratory or creative generation",
	},
	{
		Acronym:     "TAG",
		Name:        "Task, Action, Goal",
		Components:  []string{"Task", "Action", "Goal"},
		Description: "Minimal framework for quick iterations",
	},
}

// FindFramework returns the catalog entry for an acronym, or nil.
func FindFramework(acronym string) *Framework {
	for i := range Frameworks {
		if Frameworks[i].Acronym == acronym {
			return &Frameworks[i]
		}
	}
	return nil
}
