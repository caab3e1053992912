package models

import "encoding/json"

type StoreUserInfoResponse struct {
	Message    string `json:"message"`
	DataFile   string `json:"data_file"`
	ResumeFile string `json:"resume_file"`
	SessionID  string `json:"session_id"`
}

type CreateInterviewerResponse struct {
	Message   string   `json:"message"`
	Questions []string `json:"questions"`
	SessionID string   `json:"session_id"`
}

type ProcessRequest struct {
	Message       string `json:"message"`
	UserSessionID string `json:"userSessionId"`
}

type ProcessResponse struct {
	Reply string `json:"reply"`
}

type StoreInterviewRequest struct {
	Conversation  json.RawMessage `json:"conversation"`
	UserSessionID string          `json:"userSessionId"`
}

type StoreInterviewResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
}
