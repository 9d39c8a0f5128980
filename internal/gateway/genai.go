package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// maxInterviewQuestions is the round after which the Gemini-backed gateway
// considers the interview complete and emits a structure instead of another
// question.
const maxInterviewQuestions = 6

// GeminiClient implements Client directly against Gemini for deployments
// that have no QA gateway endpoint. The wire contract stays the same; only
// the transport differs.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) Close() {
	g.client.Close()
}

func (g *GeminiClient) Ask(ctx context.Context, req Request) (Response, error) {
	if req.SaveFinalStructure {
		// Nothing to persist on the Gemini side; acknowledge so the caller
		// can mark the version confirmed.
		return Response{Response: "Structure saved."}, nil
	}

	index := 0
	if req.QuestionIndex != nil {
		index = *req.QuestionIndex
	}
	finalRound := req.InterviewMode && index+1 >= maxInterviewQuestions

	prompt := g.buildPrompt(req, index, finalRound)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Response{}, fmt.Errorf("Gemini API error: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return Response{}, fmt.Errorf("Gemini returned empty response")
	}

	out := Response{Response: text, Source: "gemini"}
	if req.InterviewMode {
		if finalRound {
			out.InterviewComplete = true
		} else {
			next := index + 1
			out.QuestionIndex = &next
			out.CurrentQuestion = text
		}
	}
	return out, nil
}

func (g *GeminiClient) buildPrompt(req Request, index int, finalRound bool) string {
	if !req.InterviewMode {
		return fmt.Sprintf(`You are a data center engineering (DCEO) support assistant.
Answer concisely and practically.

Question: %s`, req.Message)
	}

	if finalRound {
		return fmt.Sprintf(`You interviewed a data center engineer about %q.
Their final answer: %q
Produce a recommended folder structure as indented plain text, two spaces per
level, marking folders with 📁 and files with 📄. Output only the structure.`,
			req.Topic, req.Message)
	}

	if req.Message == "" {
		return fmt.Sprintf(`You are interviewing a data center engineer about %q.
Ask your first question about how their documents should be organized.
Ask exactly one question.`, req.Topic)
	}

	return fmt.Sprintf(`You are interviewing a data center engineer about %q.
Previous question: %q
Their answer: %q
This was question %d of %d. Ask the next follow-up question. Ask exactly one
question.`, req.Topic, req.PreviousQuestion, req.Message, index+1, maxInterviewQuestions)
}

func extractText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
