package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"dceo-backend/internal/gateway"
	"dceo-backend/internal/models"
	"dceo-backend/internal/structure"
)

const confirmErrorMessage = "Sorry, the structure could not be saved. Please try again."

type structureStore interface {
	Create(ctx context.Context, v *models.StructureVersion) error
	Latest(ctx context.Context, sessionID uuid.UUID) (*models.StructureVersion, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.StructureVersion, error)
	Confirm(ctx context.Context, versionID uuid.UUID) error
}

// RefinementService owns the structure refinement loop: version one comes out
// of the interview, later versions come from guideline feedback, and
// confirmation freezes the latest version for good.
type RefinementService struct {
	gateway    gateway.Client
	sessions   sessionStore
	messages   messageStore
	structures structureStore
	queue      jobQueue
	events     *EventPublisher
}

func NewRefinementService(gw gateway.Client, sessions sessionStore, messages messageStore, structures structureStore, queue jobQueue, events *EventPublisher) *RefinementService {
	return &RefinementService{
		gateway:    gw,
		sessions:   sessions,
		messages:   messages,
		structures: structures,
		queue:      queue,
		events:     events,
	}
}

// EnterFeedback validates the interview's candidate structure and stores it
// as version one, moving the session into the feedback state. An unusable
// candidate is replaced by the default template with a warning on the session
// so the client can explain the substitution.
func (s *RefinementService) EnterFeedback(ctx context.Context, session *models.InterviewSession, candidate string) error {
	text := candidate
	ok, reason := structure.Validate(candidate)
	if !ok {
		text = structure.DefaultTemplate
		warning := fmt.Sprintf("Structure could not be generated (%s); a default template was applied.", reason)
		if err := s.sessions.SetWarning(ctx, session.ID, &warning); err != nil {
			return err
		}
		session.StructureWarning = &warning
	}

	version := &models.StructureVersion{
		SessionID:     session.ID,
		StructureText: text,
		Description:   "initial",
	}
	if err := s.structures.Create(ctx, version); err != nil {
		return err
	}

	if err := s.sessions.UpdateState(ctx, session.ID, models.SessionFeedback); err != nil {
		return err
	}

	s.events.Publish(ctx, session.EngineerID, models.WSMessage{
		Type:    "structure_version",
		Payload: models.StructureVersionEvent{SessionID: session.ID, VersionNo: version.VersionNo},
	})
	return nil
}

// ApplyGuidelines regenerates the structure from the engineer's feedback and
// appends it as a new version. Regeneration is deterministic and local, so
// feedback keeps working even when the gateway is down.
func (s *RefinementService) ApplyGuidelines(ctx context.Context, engineerID, sessionID uuid.UUID, feedback string) (*models.StructureVersion, error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return nil, &ValidationError{Fields: map[string]string{"feedback": "Feedback must not be empty"}}
	}

	session, err := ownedSession(ctx, s.sessions, engineerID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireFeedbackState(session); err != nil {
		return nil, err
	}

	_, text := structure.SelectTemplate(feedback)

	version := &models.StructureVersion{
		SessionID:     session.ID,
		StructureText: text,
		Description:   "applied guidelines: " + structure.Truncate(feedback, 60),
	}
	if err := s.structures.Create(ctx, version); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, engineerID, models.WSMessage{
		Type:    "structure_version",
		Payload: models.StructureVersionEvent{SessionID: session.ID, VersionNo: version.VersionNo},
	})
	return version, nil
}

// Confirm saves the latest version through the gateway and makes the session
// terminal. A failed save leaves the session in feedback so the engineer can
// retry.
func (s *RefinementService) Confirm(ctx context.Context, engineerID, sessionID uuid.UUID) (*models.StructureVersion, error) {
	session, err := ownedSession(ctx, s.sessions, engineerID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireFeedbackState(session); err != nil {
		return nil, err
	}

	version, err := s.structures.Latest(ctx, session.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "No structure to confirm"}
		}
		return nil, err
	}

	_, gwErr := s.gateway.Ask(ctx, gateway.Request{
		Message:            version.StructureText,
		InterviewMode:      true,
		ConversationID:     session.ConversationID,
		EngineerID:         session.EngineerAlias,
		Topic:              session.Topic,
		SaveFinalStructure: true,
	})
	if gwErr != nil {
		s.appendTranscript(ctx, session, confirmErrorMessage)
		return nil, &UnavailableError{Message: "Structure could not be saved"}
	}

	if err := s.structures.Confirm(ctx, version.ID); err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateState(ctx, session.ID, models.SessionConfirmed); err != nil {
		return nil, err
	}
	version.Confirmed = true
	session.State = models.SessionConfirmed

	s.appendTranscript(ctx, session,
		fmt.Sprintf("Structure confirmed and saved. Conversation ID: %s", session.ConversationID))

	if s.queue != nil {
		if err := s.queue.Enqueue(ctx, models.QueueJob{
			Type:        models.JobStructureExport,
			EngineerID:  session.EngineerID,
			ReferenceID: session.ID,
		}); err != nil {
			return nil, err
		}
	}

	s.events.Publish(ctx, engineerID, models.WSMessage{
		Type: "structure_confirmed",
		Payload: models.StructureConfirmedEvent{
			SessionID:      session.ID,
			ConversationID: session.ConversationID,
			VersionNo:      version.VersionNo,
		},
	})
	return version, nil
}

// View returns the latest version, its parsed tree and the full history.
func (s *RefinementService) View(ctx context.Context, engineerID, sessionID uuid.UUID) (*models.StructureView, error) {
	session, err := ownedSession(ctx, s.sessions, engineerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State == models.SessionActive {
		return nil, &ConflictError{Message: "Interview is not complete"}
	}

	versions, err := s.structures.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, &NotFoundError{Message: "No structure versions"}
	}

	current := versions[len(versions)-1]
	return &models.StructureView{
		Current:  &current,
		Tree:     structure.Parse(current.StructureText),
		Versions: versions,
		Warning:  session.StructureWarning,
	}, nil
}

func requireFeedbackState(session *models.InterviewSession) error {
	switch session.State {
	case models.SessionFeedback:
		return nil
	case models.SessionConfirmed:
		return &ConflictError{Message: "Structure is already confirmed"}
	default:
		return &ConflictError{Message: "Interview is not complete"}
	}
}

func (s *RefinementService) appendTranscript(ctx context.Context, session *models.InterviewSession, body string) {
	msg := &models.Message{SessionID: session.ID, Sender: models.SenderAssistant, Body: body}
	if err := s.messages.Append(ctx, msg); err != nil {
		return
	}
	s.events.Publish(ctx, session.EngineerID, models.WSMessage{
		Type:    "message",
		Payload: models.MessageEvent{SessionID: session.ID, Message: *msg},
	})
}
