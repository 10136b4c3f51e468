package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/joss/promptforge/internal/domain"
	"github.com/joss/promptforge/internal/logging"
	"github.com/joss/promptforge/internal/metrics"
	"github.com/joss/promptforge/internal/storage"
)

// Outcome reports what a save did, for notification purposes. Message is
// empty for autosaves, which must stay silent in the UI.
type Outcome struct {
	SessionID string
	Created   bool
	Message   string
	Persisted bool
}

// Manager is the single owner of the session collection and the
// active-iteration pointer. All mutations go through it; persistence
// failures degrade to in-memory-only operation and never surface as
// blocking errors.
type Manager struct {
	mu       sync.Mutex
	sessions []*domain.Session
	active   string
	epoch    uint64
	autosave bool

	// persistMu serializes store writes. Held across snapshot and Set so
	// a slow write from an earlier mutation can never land after, and
	// clobber, a later one.
	persistMu sync.Mutex

	store domain.BlobStore
	log   *logging.Logger
	now   func() time.Time

	newSessionID func() string
	newVersionID func() string
}

// NewManager creates a manager over the given store. The store may be nil
// for a purely in-memory manager.
func NewManager(store domain.BlobStore) *Manager {
	return &Manager{
		autosave:     true,
		store:        store,
		log:          logging.New("session"),
		now:          time.Now,
		newSessionID: func() string { return ulid.Make().String() },
		newVersionID: uuid.NewString,
	}
}

// Load restores the persisted collection and the autosave preference.
// Absent or malformed data yields an empty collection; load never fails
// the caller.
func (m *Manager) Load(ctx context.Context, defaultModel string) {
	if m.store == nil {
		return
	}

	data, err := m.store.Get(ctx, storage.KeySessions)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// First run.
	case err != nil:
		m.log.Warn("sessions_load_failed", nil, err)
	default:
		sessions, merr := MigrateBlob(data, defaultModel)
		if merr != nil {
			m.log.Warn("sessions_blob_malformed", nil, merr)
		} else {
			m.mu.Lock()
			m.sessions = sessions
			m.mu.Unlock()
		}
	}

	if flag, err := m.store.Get(ctx, storage.KeyAutosaveFlag); err == nil {
		var enabled bool
		if json.Unmarshal(flag, &enabled) == nil {
			m.mu.Lock()
			m.autosave = enabled
			m.mu.Unlock()
		}
	}
}

// Sessions returns the collection in display order (newest-created first
// among new insertions; updates keep their position).
func (m *Manager) Sessions() []*domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Session, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// Find returns the session with the given id, or nil.
func (m *Manager) Find(id string) *domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findLocked(id)
}

func (m *Manager) findLocked(id string) *domain.Session {
	for _, s := range m.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// ActiveID returns the session currently open for editing, or "".
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Epoch increments whenever the active iteration changes. Async save
// pipelines snapshot it before awaiting a collaborator and discard their
// result if it moved.
func (m *Manager) Epoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// CreateOrUpdate applies one save. The title and summary are precomputed
// by the orchestrating saver so this mutation never awaits a collaborator.
func (m *Manager) CreateOrUpdate(ctx context.Context, data domain.PromptData, mode domain.SaveMode, sessionName, title, summary string) Outcome {
	m.mu.Lock()

	isDraft := data.IsDraft()
	framework := data.FrameworkAcronym
	if isDraft && framework == "" {
		framework = domain.DraftFramework
	}

	var out Outcome
	target := m.findLocked(m.active)

	switch {
	case target == nil:
		// No active iteration (or it vanished): every save starts a
		// brand-new session at the front of the collection.
		name := sessionName
		if name == "" {
			name = title
		}
		v := &domain.Version{
			ID:               m.newVersionID(),
			Idea:             data.Idea,
			UseCase:          data.UseCase,
			FrameworkAcronym: framework,
			OptimizedPrompt:  data.EffectivePrompt(),
			Model:            data.Model,
			CreatedAt:        m.now(),
			ChangeSummary:    domain.SummaryInitial,
		}
		s := &domain.Session{
			ID:        m.newSessionID(),
			Name:      name,
			BaseIdea:  data.Idea,
			CreatedAt: v.CreatedAt,
			Versions:  []*domain.Version{v},
		}
		m.sessions = append([]*domain.Session{s}, m.sessions...)
		m.active = s.ID
		m.epoch++

		out.SessionID = s.ID
		out.Created = true
		if mode == domain.SaveManual {
			if isDraft {
				out.Message = fmt.Sprintf("Draft saved as %q", name)
			} else {
				out.Message = fmt.Sprintf("New session saved as %q", name)
			}
		}

	case mode == domain.SaveAutosave:
		// Silent in-place refresh of the latest version. Never grows
		// the history, never computes a summary.
		v := target.Latest()
		v.Idea = data.Idea
		v.UseCase = data.UseCase
		v.FrameworkAcronym = framework
		v.OptimizedPrompt = data.EffectivePrompt()
		v.Model = data.Model
		target.BaseIdea = data.Idea
		out.SessionID = target.ID

	default:
		// Manual checkpoint: new version at the front of the history.
		v := &domain.Version{
			ID:               m.newVersionID(),
			Idea:             data.Idea,
			UseCase:          data.UseCase,
			FrameworkAcronym: framework,
			OptimizedPrompt:  data.EffectivePrompt(),
			Model:            data.Model,
			CreatedAt:        m.now(),
			ChangeSummary:    summary,
		}
		target.Versions = append([]*domain.Version{v}, target.Versions...)
		target.BaseIdea = data.Idea
		if sessionName != "" {
			target.Name = sessionName
		}
		out.SessionID = target.ID
		out.Message = fmt.Sprintf("Saved version %d", len(target.Versions))
	}

	m.mu.Unlock()

	out.Persisted = m.persist(ctx)
	return out
}

// DeleteSession removes a session. Deleting the active session clears the
// active iteration and reports it so the caller can reset the edit buffer.
// Deleting an absent id is a no-op.
func (m *Manager) DeleteSession(ctx context.Context, id string) (removed, wasActive bool) {
	m.mu.Lock()
	for i, s := range m.sessions {
		if s.ID == id {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			removed = true
			break
		}
	}
	if removed && m.active == id {
		m.active = ""
		m.epoch++
		wasActive = true
	}
	m.mu.Unlock()

	if removed {
		m.persist(ctx)
	}
	return removed, wasActive
}

// DeleteVersion removes one version from a session's history. Emptying the
// history removes the session itself; absent ids are no-ops.
func (m *Manager) DeleteVersion(ctx context.Context, sessionID, versionID string) bool {
	m.mu.Lock()
	s := m.findLocked(sessionID)
	if s == nil {
		m.mu.Unlock()
		return false
	}
	_, idx := s.FindVersion(versionID)
	if idx < 0 {
		m.mu.Unlock()
		return false
	}
	s.Versions = append(s.Versions[:idx], s.Versions[idx+1:]...)

	if len(s.Versions) == 0 {
		for i, cur := range m.sessions {
			if cur.ID == sessionID {
				m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
				break
			}
		}
		if m.active == sessionID {
			m.active = ""
			m.epoch++
		}
	}
	m.mu.Unlock()

	m.persist(ctx)
	return true
}

// SelectForIteration makes a session the active iteration and returns the
// version to load into the edit buffer: versionID when given and found,
// otherwise the latest. Distance is the 1-based position from the end of
// the history (count minus index), display-only. Unknown ids are no-ops.
func (m *Manager) SelectForIteration(sessionID, versionID string) (v *domain.Version, distance int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.findLocked(sessionID)
	if s == nil {
		return nil, 0, false
	}

	idx := 0
	if versionID != "" {
		if found, i := s.FindVersion(versionID); found != nil {
			idx = i
		}
	}
	v = s.Versions[idx]

	m.active = sessionID
	m.epoch++
	return v, len(s.Versions) - idx, true
}

// CancelIteration clears the active iteration without touching stored data.
func (m *Manager) CancelIteration() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != "" {
		m.active = ""
		m.epoch++
	}
}

// Rename sets a session's name, leaving versions and the active iteration
// untouched.
func (m *Manager) Rename(ctx context.Context, sessionID, newName string) bool {
	m.mu.Lock()
	s := m.findLocked(sessionID)
	if s == nil {
		m.mu.Unlock()
		return false
	}
	s.Name = newName
	m.mu.Unlock()

	m.persist(ctx)
	return true
}

// AutosaveEnabled reports the persisted autosave preference.
func (m *Manager) AutosaveEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.autosave
}

// SetAutosaveEnabled stores the autosave preference.
func (m *Manager) SetAutosaveEnabled(ctx context.Context, enabled bool) {
	m.mu.Lock()
	m.autosave = enabled
	m.mu.Unlock()

	if m.store == nil {
		return
	}
	data, _ := json.Marshal(enabled)
	if err := m.store.Set(ctx, storage.KeyAutosaveFlag, data); err != nil {
		m.log.Warn("autosave_flag_persist_failed", nil, err)
	}
}

// persist serializes the collection to the store. The snapshot is taken
// while persistMu is held, so concurrent persists write in snapshot
// order and a stale blob cannot overwrite a newer one. Failures are
// logged and reported via the return value; the in-memory collection
// stays authoritative for the rest of the process.
func (m *Manager) persist(ctx context.Context) bool {
	if m.store == nil {
		return true
	}

	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	m.mu.Lock()
	data, err := marshalSessions(m.sessions)
	m.mu.Unlock()
	if err == nil {
		err = m.store.Set(ctx, storage.KeySessions, data)
	}
	if err != nil {
		m.log.Warn("sessions_persist_failed", nil, err)
		metrics.Global().RecordPersistError()
		return false
	}
	return true
}
