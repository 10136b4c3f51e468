// Package session owns the session collection, the active-iteration
// pointer, and the save orchestration built on top of them.
package session

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/joss/promptforge/internal/domain"
)

// persistedSession is the on-disk session shape. It carries both the
// current versions array and the legacy flat fields so one decode pass
// handles either generation of stored data.
type persistedSession struct {
	ID        string            `json:"id"`
	Name      string            `json:"name,omitempty"`
	BaseIdea  string            `json:"baseIdea,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	Versions  []*domain.Version `json:"versions,omitempty"`

	// Legacy flat shape, pre-versioning.
	Idea             string `json:"idea,omitempty"`
	UseCase          string `json:"useCase,omitempty"`
	FrameworkAcronym string `json:"frameworkAcronym,omitempty"`
	OptimizedPrompt  string `json:"optimizedPrompt,omitempty"`
	Model            string `json:"model,omitempty"`
}

// MigrateBlob decodes a persisted collection blob, upgrading any
// legacy flat-shaped entries to the current multi-version shape.
// Versions missing a model are backfilled with defaultModel. Malformed
// input returns an error; callers treat that as an empty collection.
func MigrateBlob(data []byte, defaultModel string) ([]*domain.Session, error) {
	var stored []persistedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}

	sessions := make([]*domain.Session, 0, len(stored))
	for i := range stored {
		sessions = append(sessions, migrateOne(&stored[i], defaultModel))
	}
	return sessions, nil
}

func migrateOne(ps *persistedSession, defaultModel string) *domain.Session {
	if len(ps.Versions) > 0 {
		for _, v := range ps.Versions {
			if v.Model == "" {
				v.Model = defaultModel
			}
		}
		baseIdea := ps.BaseIdea
		if baseIdea == "" {
			baseIdea = ps.Versions[0].Idea
		}
		return &domain.Session{
			ID:        ps.ID,
			Name:      ps.Name,
			BaseIdea:  baseIdea,
			CreatedAt: ps.CreatedAt,
			Versions:  ps.Versions,
		}
	}

	// Legacy record: wrap the flat fields as the sole imported version.
	model := ps.Model
	if model == "" {
		model = defaultModel
	}
	prompt := ps.OptimizedPrompt
	if prompt == "" {
		prompt = ps.Idea
	}
	v := &domain.Version{
		ID:               uuid.NewString(),
		Idea:             ps.Idea,
		UseCase:          ps.UseCase,
		FrameworkAcronym: ps.FrameworkAcronym,
		OptimizedPrompt:  prompt,
		Model:            model,
		CreatedAt:        ps.CreatedAt,
		ChangeSummary:    domain.SummaryImported,
	}
	return &domain.Session{
		ID:        ps.ID,
		Name:      ps.Name,
		BaseIdea:  ps.Idea,
		CreatedAt: ps.CreatedAt,
		Versions:  []*domain.Version{v},
	}
}

// marshalSessions serializes the collection in the current shape.
func marshalSessions(sessions []*domain.Session) ([]byte, error) {
	return json.Marshal(sessions)
}
