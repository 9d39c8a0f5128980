package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantErr  bool
		response string
	}{
		{
			"object body",
			`{"statusCode":200,"body":{"response":"What is your top-level division?","interviewComplete":false,"questionIndex":1}}`,
			false,
			"What is your top-level division?",
		},
		{
			"string-encoded body",
			`{"statusCode":200,"body":"{\"response\":\"Tell me about vendors.\",\"questionIndex\":2}"}`,
			false,
			"Tell me about vendors.",
		},
		{
			"non-200 envelope status",
			`{"statusCode":500,"body":{"response":"boom"}}`,
			true,
			"",
		},
		{
			"missing body",
			`{"statusCode":200}`,
			true,
			"",
		},
		{
			"missing response field",
			`{"statusCode":200,"body":{"questionIndex":3}}`,
			true,
			"",
		},
		{
			"not json",
			`<html>gateway timeout</html>`,
			true,
			"",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := decodeEnvelope([]byte(tc.data))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Expected error, got %+v", resp)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if resp.Response != tc.response {
				t.Errorf("Expected response %q, got %q", tc.response, resp.Response)
			}
		})
	}
}

func TestDecodeEnvelope_CarriesInterviewFields(t *testing.T) {
	data := `{"statusCode":200,"body":{"response":"📁 Electrical/\n  📁 Vendors/","interviewComplete":true,"questionIndex":4,"sources":7}}`

	resp, err := decodeEnvelope([]byte(data))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !resp.InterviewComplete {
		t.Error("Expected interviewComplete=true")
	}
	if resp.QuestionIndex == nil || *resp.QuestionIndex != 4 {
		t.Errorf("Expected questionIndex=4, got %v", resp.QuestionIndex)
	}
	if resp.Sources != 7 {
		t.Errorf("Expected sources=7, got %d", resp.Sources)
	}
}

func TestHTTPClient_Ask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ask" {
			t.Errorf("Expected path /ask, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"statusCode":200,"body":{"response":"What is your top-level division?","questionIndex":1}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	idx := 0
	resp, err := client.Ask(context.Background(), Request{
		Message:       "",
		InterviewMode: true,
		QuestionIndex: &idx,
		Topic:         "file_organization",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Response != "What is your top-level division?" {
		t.Errorf("Unexpected response: %q", resp.Response)
	}
}

func TestHTTPClient_Ask_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	_, err := client.Ask(context.Background(), Request{Message: "hello"})
	if err == nil {
		t.Fatal("Expected error for 500 response")
	}

	httpErr, ok := err.(*HTTPError)
	if !ok {
		t.Fatalf("Expected *HTTPError, got %T", err)
	}
	if httpErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", httpErr.StatusCode)
	}
}
