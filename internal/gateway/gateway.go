package gateway

import (
	"context"
	"encoding/json"
	"fmt"
)

// Request is the wire contract of the remote QA service. Interview fields are
// omitted for plain assistant questions.
type Request struct {
	Message            string `json:"message"`
	InterviewMode      bool   `json:"interviewMode"`
	QuestionIndex      *int   `json:"questionIndex,omitempty"`
	ConversationID     string `json:"conversationId,omitempty"`
	PreviousQuestion   string `json:"previousQuestion,omitempty"`
	EngineerID         string `json:"engineerId,omitempty"`
	Topic              string `json:"topic,omitempty"`
	SaveFinalStructure bool   `json:"saveFinalStructure,omitempty"`
}

// Response is the decoded payload of a successful gateway reply.
type Response struct {
	Response          string `json:"response"`
	InterviewComplete bool   `json:"interviewComplete"`
	QuestionIndex     *int   `json:"questionIndex"`
	CurrentQuestion   string `json:"currentQuestion"`
	Sources           int    `json:"sources"`
	Source            string `json:"source"`
}

// Client is the remote QA gateway as seen by the rest of the service. Every
// failure mode (transport, status, malformed envelope) surfaces as an error;
// callers never retry automatically.
type Client interface {
	Ask(ctx context.Context, req Request) (Response, error)
}

// decodeEnvelope unwraps the Lambda-style `{statusCode, body}` envelope the
// gateway replies with. The body is sometimes a JSON object and sometimes a
// JSON-encoded string containing the object; both are accepted. Anything else
// is a decode error, never a partial payload.
func decodeEnvelope(data []byte) (Response, error) {
	var env struct {
		StatusCode int             `json:"statusCode"`
		Body       json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return Response{}, fmt.Errorf("gateway: malformed envelope: %w", err)
	}
	if env.StatusCode != 0 && env.StatusCode != 200 {
		return Response{}, fmt.Errorf("gateway: envelope status %d", env.StatusCode)
	}
	if len(env.Body) == 0 {
		return Response{}, fmt.Errorf("gateway: envelope has no body")
	}

	raw := env.Body
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return Response{}, fmt.Errorf("gateway: malformed string body: %w", err)
		}
		raw = []byte(inner)
	}

	var payload Response
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Response{}, fmt.Errorf("gateway: malformed body payload: %w", err)
	}
	if payload.Response == "" {
		return Response{}, fmt.Errorf("gateway: body has no response field")
	}
	return payload, nil
}
