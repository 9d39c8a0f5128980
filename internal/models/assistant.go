package models

// AskRequest is the payload for the plain (non-interview) assistant endpoint.
type AskRequest struct {
	Message string `json:"message"`
}

type AskResponse struct {
	Reply   string `json:"reply"`
	Sources int    `json:"sources"`
	Source  string `json:"source,omitempty"`
}
