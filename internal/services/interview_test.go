package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"dceo-backend/internal/gateway"
	"dceo-backend/internal/models"
)

// memStore is an in-memory stand-in for the Postgres repositories and the
// Redis job queue.
type memStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.InterviewSession
	messages map[uuid.UUID][]models.Message
	versions map[uuid.UUID][]models.StructureVersion
	jobs     []models.QueueJob
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[uuid.UUID]*models.InterviewSession),
		messages: make(map[uuid.UUID][]models.Message),
		versions: make(map[uuid.UUID][]models.StructureVersion),
	}
}

func (m *memStore) Create(ctx context.Context, s *models.InterviewSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (*models.InterviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) GetLatestByEngineer(ctx context.Context, engineerID uuid.UUID) (*models.InterviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.InterviewSession
	for _, s := range m.sessions {
		if s.EngineerID != engineerID {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, pgx.ErrNoRows
	}
	cp := *latest
	return &cp, nil
}

func (m *memStore) UpdateProgress(ctx context.Context, id uuid.UUID, questionIndex int, currentQuestion string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.QuestionIndex = questionIndex
		s.CurrentQuestion = currentQuestion
	}
	return nil
}

func (m *memStore) UpdateState(ctx context.Context, id uuid.UUID, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.State = state
	}
	return nil
}

func (m *memStore) SetWarning(ctx context.Context, id uuid.UUID, warning *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.StructureWarning = warning
	}
	return nil
}

func (m *memStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.messages, id)
	delete(m.versions, id)
	return nil
}

func (m *memStore) Append(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], *msg)
	return nil
}

func (m *memStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Message(nil), m.messages[sessionID]...), nil
}

func (m *memStore) CreateVersion(ctx context.Context, v *models.StructureVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.ID = uuid.New()
	v.VersionNo = len(m.versions[v.SessionID]) + 1
	v.CreatedAt = time.Now()
	m.versions[v.SessionID] = append(m.versions[v.SessionID], *v)
	return nil
}

func (m *memStore) Latest(ctx context.Context, sessionID uuid.UUID) (*models.StructureVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	versions := m.versions[sessionID]
	if len(versions) == 0 {
		return nil, pgx.ErrNoRows
	}
	cp := versions[len(versions)-1]
	return &cp, nil
}

func (m *memStore) ListVersions(ctx context.Context, sessionID uuid.UUID) ([]models.StructureVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.StructureVersion(nil), m.versions[sessionID]...), nil
}

func (m *memStore) Confirm(ctx context.Context, versionID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sid, versions := range m.versions {
		for i := range versions {
			if versions[i].ID == versionID {
				m.versions[sid][i].Confirmed = true
			}
		}
	}
	return nil
}

func (m *memStore) Enqueue(ctx context.Context, job models.QueueJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return nil
}

// versionStore adapts memStore's version methods to the structureStore
// interface without clashing with sessionStore's Create.
type versionStore struct{ *memStore }

func (v versionStore) Create(ctx context.Context, sv *models.StructureVersion) error {
	return v.CreateVersion(ctx, sv)
}

func (v versionStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.StructureVersion, error) {
	return v.ListVersions(ctx, sessionID)
}

type fakeGateway struct {
	ask func(ctx context.Context, req gateway.Request) (gateway.Response, error)
}

func (f *fakeGateway) Ask(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	return f.ask(ctx, req)
}

func intPtr(v int) *int { return &v }

func newTestServices(gw gateway.Client) (*InterviewService, *RefinementService, *memStore) {
	store := newMemStore()
	events := NewEventPublisher(nil)
	refinement := NewRefinementService(gw, store, store, versionStore{store}, store, events)
	interview := NewInterviewService(gw, store, store, refinement, events)
	return interview, refinement, store
}

func TestStartInterview(t *testing.T) {
	gw := &fakeGateway{ask: func(ctx context.Context, req gateway.Request) (gateway.Response, error) {
		if !req.InterviewMode {
			t.Error("Expected interviewMode=true")
		}
		if req.Message != "" {
			t.Errorf("Expected empty opening message, got %q", req.Message)
		}
		return gateway.Response{
			Response:        "How do you organize electrical documents today?",
			QuestionIndex:   intPtr(1),
			CurrentQuestion: "How do you organize electrical documents today?",
		}, nil
	}}
	interview, _, store := newTestServices(gw)

	engineerID := uuid.New()
	session, msg, err := interview.Start(context.Background(), engineerID, models.StartInterviewRequest{
		Alias: "j.doe",
		Topic: "file_organization",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if session.State != models.SessionActive {
		t.Errorf("Expected state active, got %s", session.State)
	}
	if session.QuestionIndex != 1 {
		t.Errorf("Expected questionIndex=1, got %d", session.QuestionIndex)
	}
	if msg.Sender != models.SenderAssistant {
		t.Errorf("Expected assistant sender, got %s", msg.Sender)
	}

	messages, _ := store.ListBySession(context.Background(), session.ID)
	if len(messages) != 1 {
		t.Fatalf("Expected 1 transcript message, got %d", len(messages))
	}
}

func TestStartInterview_Validation(t *testing.T) {
	interview, _, _ := newTestServices(&fakeGateway{})

	_, _, err := interview.Start(context.Background(), uuid.New(), models.StartInterviewRequest{
		Alias: "  ",
		Topic: "not_a_topic",
	})
	valErr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
	if _, ok := valErr.Fields["alias"]; !ok {
		t.Error("Expected alias field error")
	}
	if _, ok := valErr.Fields["topic"]; !ok {
		t.Error("Expected topic field error")
	}
}

func TestSubmitAnswer_AdvancesIndex(t *testing.T) {
	tests := []struct {
		name        string
		serverIndex *int
		startIndex  int
		want        int
	}{
		{"adopts greater server index", intPtr(3), 1, 3},
		{"ignores stale server index", intPtr(1), 2, 3},
		{"ignores equal server index", intPtr(2), 2, 3},
		{"increments when index missing", nil, 2, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gw := &fakeGateway{ask: func(ctx context.Context, req gateway.Request) (gateway.Response, error) {
				return gateway.Response{Response: "Next question?", QuestionIndex: tc.serverIndex}, nil
			}}
			interview, _, store := newTestServices(gw)

			engineerID := uuid.New()
			session := &models.InterviewSession{
				EngineerID: engineerID, ConversationID: uuid.NewString(),
				EngineerAlias: "j.doe", Topic: "file_organization",
				State: models.SessionActive, QuestionIndex: tc.startIndex,
			}
			store.Create(context.Background(), session)

			result, err := interview.SubmitAnswer(context.Background(), engineerID, session.ID, "We keep PDFs in one shared drive.")
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result.Session.QuestionIndex != tc.want {
				t.Errorf("Expected questionIndex=%d, got %d", tc.want, result.Session.QuestionIndex)
			}
		})
	}
}

func TestSubmitAnswer_GatewayFailure(t *testing.T) {
	gw := &fakeGateway{ask: func(ctx context.Context, req gateway.Request) (gateway.Response, error) {
		return gateway.Response{}, &gateway.HTTPError{StatusCode: 502, Body: "bad gateway"}
	}}
	interview, _, store := newTestServices(gw)

	engineerID := uuid.New()
	session := &models.InterviewSession{
		EngineerID: engineerID, ConversationID: uuid.NewString(),
		EngineerAlias: "j.doe", Topic: "file_organization",
		State: models.SessionActive, QuestionIndex: 2,
	}
	store.Create(context.Background(), session)

	result, err := interview.SubmitAnswer(context.Background(), engineerID, session.ID, "An answer")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Reply.Body != answerErrorMessage {
		t.Errorf("Expected error message reply, got %q", result.Reply.Body)
	}

	// The interview must not advance on failure.
	stored, _ := store.GetByID(context.Background(), session.ID)
	if stored.QuestionIndex != 2 {
		t.Errorf("Expected questionIndex unchanged at 2, got %d", stored.QuestionIndex)
	}
	if stored.State != models.SessionActive {
		t.Errorf("Expected state active, got %s", stored.State)
	}

	messages, _ := store.ListBySession(context.Background(), session.ID)
	if len(messages) != 2 {
		t.Fatalf("Expected user + error messages, got %d", len(messages))
	}
}

func TestSubmitAnswer_CompletesInterview(t *testing.T) {
	structureText := "📁 Electrical/\n  📁 Vendors/\n    📄 schneider-contract.pdf"
	gw := &fakeGateway{ask: func(ctx context.Context, req gateway.Request) (gateway.Response, error) {
		return gateway.Response{Response: structureText, InterviewComplete: true}, nil
	}}
	interview, _, store := newTestServices(gw)

	engineerID := uuid.New()
	session := &models.InterviewSession{
		EngineerID: engineerID, ConversationID: uuid.NewString(),
		EngineerAlias: "j.doe", Topic: "file_organization",
		State: models.SessionActive, QuestionIndex: 5,
	}
	store.Create(context.Background(), session)

	result, err := interview.SubmitAnswer(context.Background(), engineerID, session.ID, "That covers everything.")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Session.State != models.SessionFeedback {
		t.Errorf("Expected state feedback, got %s", result.Session.State)
	}
	if !result.Reply.IsStructure {
		t.Error("Expected structure reply to be flagged")
	}

	versions, _ := store.ListVersions(context.Background(), session.ID)
	if len(versions) != 1 {
		t.Fatalf("Expected 1 structure version, got %d", len(versions))
	}
	if versions[0].Description != "initial" {
		t.Errorf("Expected description 'initial', got %q", versions[0].Description)
	}
	if versions[0].StructureText != structureText {
		t.Errorf("Structure text was altered: %q", versions[0].StructureText)
	}

	stored, _ := store.GetByID(context.Background(), session.ID)
	if stored.StructureWarning != nil {
		t.Errorf("Expected no warning for a valid structure, got %q", *stored.StructureWarning)
	}
}

func TestSubmitAnswer_UnusableStructureFallsBack(t *testing.T) {
	gw := &fakeGateway{ask: func(ctx context.Context, req gateway.Request) (gateway.Response, error) {
		return gateway.Response{
			Response:          "Could you clarify what you mean by organized?",
			InterviewComplete: true,
		}, nil
	}}
	interview, _, store := newTestServices(gw)

	engineerID := uuid.New()
	session := &models.InterviewSession{
		EngineerID: engineerID, ConversationID: uuid.NewString(),
		EngineerAlias: "j.doe", Topic: "file_organization",
		State: models.SessionActive, QuestionIndex: 5,
	}
	store.Create(context.Background(), session)

	result, err := interview.SubmitAnswer(context.Background(), engineerID, session.ID, "Done.")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Session.State != models.SessionFeedback {
		t.Errorf("Expected state feedback, got %s", result.Session.State)
	}

	versions, _ := store.ListVersions(context.Background(), session.ID)
	if len(versions) != 1 {
		t.Fatalf("Expected 1 structure version, got %d", len(versions))
	}
	if !strings.Contains(versions[0].StructureText, "Engineering Documentation") {
		t.Errorf("Expected default template, got %q", versions[0].StructureText)
	}

	stored, _ := store.GetByID(context.Background(), session.ID)
	if stored.StructureWarning == nil {
		t.Fatal("Expected a structure warning")
	}
}

func TestSubmitAnswer_NotActive(t *testing.T) {
	interview, _, store := newTestServices(&fakeGateway{})

	engineerID := uuid.New()
	session := &models.InterviewSession{
		EngineerID: engineerID, ConversationID: uuid.NewString(),
		EngineerAlias: "j.doe", Topic: "file_organization",
		State: models.SessionFeedback,
	}
	store.Create(context.Background(), session)

	_, err := interview.SubmitAnswer(context.Background(), engineerID, session.ID, "More thoughts")
	if _, ok := err.(*ConflictError); !ok {
		t.Fatalf("Expected *ConflictError, got %T", err)
	}
}

func TestSubmitAnswer_OtherEngineersSession(t *testing.T) {
	interview, _, store := newTestServices(&fakeGateway{})

	session := &models.InterviewSession{
		EngineerID: uuid.New(), ConversationID: uuid.NewString(),
		EngineerAlias: "j.doe", Topic: "file_organization",
		State: models.SessionActive,
	}
	store.Create(context.Background(), session)

	_, err := interview.SubmitAnswer(context.Background(), uuid.New(), session.ID, "An answer")
	if _, ok := err.(*ForbiddenError); !ok {
		t.Fatalf("Expected *ForbiddenError, got %T", err)
	}
}

func TestReset_DiscardsInFlightReply(t *testing.T) {
	engineerID := uuid.New()
	var interview *InterviewService
	var sessionID uuid.UUID

	gw := &fakeGateway{ask: func(ctx context.Context, req gateway.Request) (gateway.Response, error) {
		if req.Message == "" {
			return gateway.Response{Response: "First question?", QuestionIndex: intPtr(1)}, nil
		}
		// Reset lands while this call is in flight.
		if err := interview.Reset(ctx, engineerID, sessionID); err != nil {
			t.Errorf("Reset failed: %v", err)
		}
		return gateway.Response{Response: "Question that should be discarded", QuestionIndex: intPtr(2)}, nil
	}}

	var store *memStore
	interview, _, store = newTestServices(gw)

	session, _, err := interview.Start(context.Background(), engineerID, models.StartInterviewRequest{
		Alias: "j.doe", Topic: "file_organization",
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	sessionID = session.ID

	_, err = interview.SubmitAnswer(context.Background(), engineerID, sessionID, "Answer during reset")
	if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("Expected *NotFoundError for discarded reply, got %T: %v", err, err)
	}

	if _, err := store.GetByID(context.Background(), sessionID); err == nil {
		t.Error("Expected session to be deleted")
	}
}

func TestReset_RemovesTranscript(t *testing.T) {
	gw := &fakeGateway{ask: func(ctx context.Context, req gateway.Request) (gateway.Response, error) {
		return gateway.Response{Response: "Question?", QuestionIndex: intPtr(1)}, nil
	}}
	interview, _, store := newTestServices(gw)

	engineerID := uuid.New()
	session, _, err := interview.Start(context.Background(), engineerID, models.StartInterviewRequest{
		Alias: "j.doe", Topic: "file_organization",
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := interview.Reset(context.Background(), engineerID, session.ID); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	messages, _ := store.ListBySession(context.Background(), session.ID)
	if len(messages) != 0 {
		t.Errorf("Expected empty transcript after reset, got %d messages", len(messages))
	}

	_, _, err = interview.Current(context.Background(), engineerID)
	if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("Expected *NotFoundError after reset, got %T", err)
	}
}

func TestStartInterview_GatewayFailure(t *testing.T) {
	gw := &fakeGateway{ask: func(ctx context.Context, req gateway.Request) (gateway.Response, error) {
		return gateway.Response{}, &gateway.HTTPError{StatusCode: 500, Body: "boom"}
	}}
	interview, _, _ := newTestServices(gw)

	session, msg, err := interview.Start(context.Background(), uuid.New(), models.StartInterviewRequest{
		Alias: "j.doe", Topic: "file_organization",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if session.State != models.SessionActive {
		t.Errorf("Expected state active, got %s", session.State)
	}
	if session.QuestionIndex != 0 {
		t.Errorf("Expected questionIndex=0, got %d", session.QuestionIndex)
	}
	if msg.Body != startErrorMessage {
		t.Errorf("Expected start error message, got %q", msg.Body)
	}
}
