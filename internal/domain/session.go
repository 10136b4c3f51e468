// Package domain defines the prompt session data model.
package domain

import "time"

// DraftFramework is the sentinel framework tag for saves that only contain
// source idea text, before any framework has been applied.
const DraftFramework = "DRAFT"

// Fixed change-summary strings used when no summary is computed.
const (
	SummaryInitial  = "Initial version"
	SummaryImported = "Imported version"
	SummaryManual   = "Manual update"
)

// Version is one immutable snapshot of a prompt-building attempt.
type Version struct {
	ID               string    `json:"versionId"`
	Idea             string    `json:"idea"`
	UseCase          string    `json:"useCase"`
	FrameworkAcronym string    `json:"frameworkAcronym"`
	OptimizedPrompt  string    `json:"optimizedPrompt"`
	Model            string    `json:"model"`
	CreatedAt        time.Time `json:"createdAt"`
	ChangeSummary    string    `json:"changeSummary"`
}

// Session is a named history of versions, newest first (index 0 = latest).
// A session always holds at least one version; deleting the last version
// removes the session itself.
type Session struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	BaseIdea  string     `json:"baseIdea"`
	CreatedAt time.Time  `json:"createdAt"`
	Versions  []*Version `json:"versions"`
}

// Latest returns the most recent version, or nil for an (invalid) empty
// history. Callers should prefer this over indexing position 0 directly.
func (s *Session) Latest() *Version {
	if len(s.Versions) == 0 {
		return nil
	}
	return s.Versions[0]
}

// FindVersion returns the version with the given id and its index,
// or (nil, -1) when absent.
func (s *Session) FindVersion(versionID string) (*Version, int) {
	for i, v := range s.Versions {
		if v.ID == versionID {
			return v, i
		}
	}
	return nil, -1
}

// SaveMode distinguishes explicit checkpoints from silent autosaves.
type SaveMode string

const (
	// SaveManual creates a new version at the front of the history.
	SaveManual SaveMode = "manual"
	// SaveAutosave overwrites the latest version in place and never
	// grows the history.
	SaveAutosave SaveMode = "autosave"
)

// PromptData is the edit-buffer payload handed to a save operation.
type PromptData struct {
	Idea             string
	UseCase          string
	FrameworkAcronym string
	OptimizedPrompt  string
	Model            string
}

// IsDraft reports whether this save carries only source idea text with no
// generated output yet.
func (p PromptData) IsDraft() bool {
	return p.OptimizedPrompt == "" && p.Idea != ""
}

// EffectivePrompt returns the text stored as the version's prompt: the
// generated prompt when present, otherwise the raw idea (draft).
func (p PromptData) EffectivePrompt() string {
	if p.OptimizedPrompt != "" {
		return p.OptimizedPrompt
	}
	return p.Idea
}
