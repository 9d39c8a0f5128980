package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"dceo-backend/internal/gateway"
	"dceo-backend/internal/models"
)

// Assistant messages shown in the transcript when a gateway call fails. The
// interview does not advance, so the engineer can simply answer again.
const (
	startErrorMessage  = "Sorry, I could not start the interview. Please send a message to try again."
	answerErrorMessage = "Sorry, there was an error processing your response. Please try again."
)

type sessionStore interface {
	Create(ctx context.Context, s *models.InterviewSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.InterviewSession, error)
	GetLatestByEngineer(ctx context.Context, engineerID uuid.UUID) (*models.InterviewSession, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, questionIndex int, currentQuestion string) error
	UpdateState(ctx context.Context, id uuid.UUID, state string) error
	SetWarning(ctx context.Context, id uuid.UUID, warning *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type messageStore interface {
	Append(ctx context.Context, m *models.Message) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error)
}

// InterviewService drives a session through active -> feedback -> confirmed.
// Gateway calls for one session are serialized with a per-session lock, and a
// generation counter recognizes replies that raced a reset so they can be
// discarded instead of resurrecting deleted state.
type InterviewService struct {
	gateway    gateway.Client
	sessions   sessionStore
	messages   messageStore
	refinement *RefinementService
	events     *EventPublisher

	mu          sync.Mutex
	locks       map[uuid.UUID]*sync.Mutex
	generations map[uuid.UUID]int
}

func NewInterviewService(gw gateway.Client, sessions sessionStore, messages messageStore, refinement *RefinementService, events *EventPublisher) *InterviewService {
	return &InterviewService{
		gateway:     gw,
		sessions:    sessions,
		messages:    messages,
		refinement:  refinement,
		events:      events,
		locks:       make(map[uuid.UUID]*sync.Mutex),
		generations: make(map[uuid.UUID]int),
	}
}

func (s *InterviewService) sessionLock(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *InterviewService) generation(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[id]
}

func (s *InterviewService) bumpGeneration(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[id]++
}

func (s *InterviewService) forget(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
	delete(s.generations, id)
}

// Start creates a session and asks the gateway for the opening question. If
// the gateway fails, the session still exists with an error message in the
// transcript; the next submitted answer retries from question zero.
func (s *InterviewService) Start(ctx context.Context, engineerID uuid.UUID, req models.StartInterviewRequest) (*models.InterviewSession, *models.Message, error) {
	fieldErrors := make(map[string]string)
	if strings.TrimSpace(req.Alias) == "" {
		fieldErrors["alias"] = "Alias is required"
	}
	if !models.ValidTopic(req.Topic) {
		fieldErrors["topic"] = "Unknown interview topic"
	}
	if len(fieldErrors) > 0 {
		return nil, nil, &ValidationError{Fields: fieldErrors}
	}

	session := &models.InterviewSession{
		EngineerID:     engineerID,
		ConversationID: uuid.NewString(),
		EngineerAlias:  strings.TrimSpace(req.Alias),
		Topic:          req.Topic,
		State:          models.SessionActive,
		QuestionIndex:  0,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, err
	}

	lock := s.sessionLock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	idx := 0
	resp, err := s.gateway.Ask(ctx, gateway.Request{
		Message:        "",
		InterviewMode:  true,
		QuestionIndex:  &idx,
		ConversationID: session.ConversationID,
		EngineerID:     session.EngineerAlias,
		Topic:          session.Topic,
	})
	if err != nil {
		msg, appendErr := s.appendAssistant(ctx, session, startErrorMessage, false)
		if appendErr != nil {
			return nil, nil, appendErr
		}
		return session, msg, nil
	}

	if resp.QuestionIndex != nil && *resp.QuestionIndex > session.QuestionIndex {
		session.QuestionIndex = *resp.QuestionIndex
	}
	session.CurrentQuestion = questionFrom(resp)
	if err := s.sessions.UpdateProgress(ctx, session.ID, session.QuestionIndex, session.CurrentQuestion); err != nil {
		return nil, nil, err
	}

	msg, err := s.appendAssistant(ctx, session, resp.Response, false)
	if err != nil {
		return nil, nil, err
	}
	return session, msg, nil
}

type SubmitResult struct {
	Session *models.InterviewSession `json:"session"`
	Reply   *models.Message          `json:"reply"`
}

// SubmitAnswer records the engineer's answer, forwards it to the gateway and
// applies the reply. The user message is appended before the gateway call so
// the transcript reflects what was said even when the call fails.
func (s *InterviewService) SubmitAnswer(ctx context.Context, engineerID, sessionID uuid.UUID, text string) (*SubmitResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Fields: map[string]string{"text": "Answer must not be empty"}}
	}

	session, err := ownedSession(ctx, s.sessions, engineerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != models.SessionActive {
		return nil, &ConflictError{Message: "Interview is not active"}
	}

	lock := s.sessionLock(session.ID)
	lock.Lock()
	defer lock.Unlock()

	gen := s.generation(session.ID)

	userMsg := &models.Message{SessionID: session.ID, Sender: models.SenderUser, Body: text}
	if err := s.messages.Append(ctx, userMsg); err != nil {
		return nil, err
	}
	s.events.Publish(ctx, engineerID, models.WSMessage{
		Type:    "message",
		Payload: models.MessageEvent{SessionID: session.ID, Message: *userMsg},
	})

	resp, gwErr := s.gateway.Ask(ctx, gateway.Request{
		Message:          text,
		InterviewMode:    true,
		QuestionIndex:    &session.QuestionIndex,
		ConversationID:   session.ConversationID,
		PreviousQuestion: session.CurrentQuestion,
		EngineerID:       session.EngineerAlias,
		Topic:            session.Topic,
	})

	// A reset that happened while the gateway call was in flight deleted the
	// session; the reply belongs to a conversation that no longer exists.
	if s.generation(session.ID) != gen {
		s.forget(session.ID)
		return nil, &NotFoundError{Message: "Session was reset"}
	}

	if gwErr != nil {
		reply, err := s.appendAssistant(ctx, session, answerErrorMessage, false)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{Session: session, Reply: reply}, nil
	}

	if resp.InterviewComplete {
		reply, err := s.appendAssistant(ctx, session, resp.Response, true)
		if err != nil {
			return nil, err
		}
		if err := s.refinement.EnterFeedback(ctx, session, resp.Response); err != nil {
			return nil, err
		}
		session.State = models.SessionFeedback
		return &SubmitResult{Session: session, Reply: reply}, nil
	}

	// Adopt the server's question index only when it moves forward; stale or
	// repeated indices fall back to a local increment.
	next := session.QuestionIndex + 1
	if resp.QuestionIndex != nil && *resp.QuestionIndex > session.QuestionIndex {
		next = *resp.QuestionIndex
	}
	session.QuestionIndex = next
	session.CurrentQuestion = questionFrom(resp)
	if err := s.sessions.UpdateProgress(ctx, session.ID, session.QuestionIndex, session.CurrentQuestion); err != nil {
		return nil, err
	}

	reply, err := s.appendAssistant(ctx, session, resp.Response, false)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{Session: session, Reply: reply}, nil
}

// Reset abandons the session entirely. It deliberately does not take the
// session lock: reset is the escape hatch for a hung gateway call, and the
// generation bump makes the in-flight reply self-discard.
func (s *InterviewService) Reset(ctx context.Context, engineerID, sessionID uuid.UUID) error {
	session, err := ownedSession(ctx, s.sessions, engineerID, sessionID)
	if err != nil {
		return err
	}

	s.bumpGeneration(session.ID)
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return err
	}

	s.events.Publish(ctx, engineerID, models.WSMessage{
		Type:    "session_reset",
		Payload: map[string]string{"session_id": session.ID.String()},
	})
	return nil
}

// Get returns a session with its full transcript.
func (s *InterviewService) Get(ctx context.Context, engineerID, sessionID uuid.UUID) (*models.InterviewSession, []models.Message, error) {
	session, err := ownedSession(ctx, s.sessions, engineerID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	messages, err := s.messages.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, messages, nil
}

// Current returns the engineer's most recent session, if any.
func (s *InterviewService) Current(ctx context.Context, engineerID uuid.UUID) (*models.InterviewSession, []models.Message, error) {
	session, err := s.sessions.GetLatestByEngineer(ctx, engineerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, &NotFoundError{Message: "No interview session"}
		}
		return nil, nil, err
	}

	messages, err := s.messages.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, messages, nil
}

func ownedSession(ctx context.Context, sessions sessionStore, engineerID, sessionID uuid.UUID) (*models.InterviewSession, error) {
	session, err := sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Session not found"}
		}
		return nil, err
	}
	if session.EngineerID != engineerID {
		return nil, &ForbiddenError{Message: "Session belongs to another engineer"}
	}
	return session, nil
}

func (s *InterviewService) appendAssistant(ctx context.Context, session *models.InterviewSession, body string, isStructure bool) (*models.Message, error) {
	msg := &models.Message{
		SessionID:   session.ID,
		Sender:      models.SenderAssistant,
		Body:        body,
		IsStructure: isStructure,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, err
	}
	s.events.Publish(ctx, session.EngineerID, models.WSMessage{
		Type:    "message",
		Payload: models.MessageEvent{SessionID: session.ID, Message: *msg},
	})
	return msg, nil
}

// questionFrom prefers the explicit currentQuestion field and falls back to
// the full response text, which is how the gateway phrases its questions.
func questionFrom(resp gateway.Response) string {
	if resp.CurrentQuestion != "" {
		return resp.CurrentQuestion
	}
	return resp.Response
}
