package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/mock-interviewer/internal/models"
	"alfredoptarigan/mock-interviewer/internal/repositories"
	"alfredoptarigan/mock-interviewer/internal/services"
)

// scriptedLLM answers each collaborator with a canned response picked from
// the shape of the task.
func scriptedLLM() services.LLMTask {
	return services.LLMTaskFunc(func(ctx context.Context, task services.Task) (string, error) {
		switch {
		case task.ResearchQuery != "":
			return "```json\n[\"Tell me about yourself.\", \"Why Acme?\"]\n```", nil
		case strings.Contains(task.Prompt, "JSON format"):
			return `{"communication": 75, "content": 60, "confidence": 90, "feedback": "Clear and concise."}`, nil
		default:
			return "  Why do you want to join Acme?  ", nil
		}
	})
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	baseDir := t.TempDir()
	repo, err := repositories.NewFileSessionRepository(baseDir)
	require.NoError(t, err)

	llm := scriptedLLM()
	svc := services.NewInterviewService(
		repo,
		services.NewStorageService(filepath.Join(baseDir, repositories.DirResumes), 1<<20),
		services.NewResumeParser(),
		services.NewQuestionGenerator(llm, nil, nil, 0.6),
		services.NewDialogueResponder(llm, 0.6),
		services.NewFeedbackScorer(llm),
		nil,
	)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	NewInterviewHandler(svc).RegisterRoutes(app)
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded), string(body))
	return resp.StatusCode, decoded
}

func intakeRequest(t *testing.T, fields map[string]string, resumeName, resumeBody string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if resumeName != "" {
		part, err := w.CreateFormFile("resume", resumeName)
		require.NoError(t, err)
		_, err = part.Write([]byte(resumeBody))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/store_user_info", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, path string, payload any) *http.Request {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func validIntake() map[string]string {
	return map[string]string{
		"desiredJob":    "Backend Engineer",
		"questionCount": "2",
		"difficulty":    "medium",
		"company":       "Acme",
	}
}

func TestInterviewHappyPath(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, intakeRequest(t, validIntake(), "resume.txt", "Go developer"))
	require.Equal(t, fiber.StatusOK, status, body)
	sessionID := body["session_id"].(string)
	assert.Equal(t, sessionID+".json", body["data_file"])
	assert.Equal(t, sessionID+".txt", body["resume_file"])

	status, body = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/create_interviewer?userSessionId="+sessionID+".json", nil))
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, []any{"Tell me about yourself.", "Why Acme?"}, body["questions"])
	assert.Equal(t, sessionID, body["session_id"])

	status, body = doRequest(t, app, jsonRequest(t, "/process", models.ProcessRequest{Message: "Hi", UserSessionID: sessionID}))
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "Why do you want to join Acme?", body["reply"])

	status, body = doRequest(t, app, jsonRequest(t, "/store_interview", map[string]any{
		"userSessionId": sessionID,
		"conversation":  []map[string]string{{"speaker": "candidate", "text": "Hi"}},
	}))
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, sessionID+".json", body["filename"])

	status, body = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/get_feedback?userSessionId="+sessionID, nil))
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, float64(75), body["communication"])
	assert.Equal(t, float64(60), body["content"])
	assert.Equal(t, float64(90), body["confidence"])
	assert.Equal(t, "Clear and concise.", body["feedback"])
}

func TestStoreUserInfoMissingFields(t *testing.T) {
	app := newTestApp(t)

	fields := validIntake()
	delete(fields, "company")

	status, body := doRequest(t, app, intakeRequest(t, fields, "", ""))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Missing fields: company", body["error"])
	assert.Equal(t, "validation_error", body["kind"])
	assert.Equal(t, false, body["retryable"])
}

func TestCreateInterviewerErrors(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/create_interviewer", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "validation_error", body["kind"])

	status, body = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/create_interviewer?userSessionId=unknown", nil))
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "not_found", body["kind"])
}

func TestProcessBeforeInterviewIsConflict(t *testing.T) {
	app := newTestApp(t)

	_, body := doRequest(t, app, intakeRequest(t, validIntake(), "", ""))
	sessionID := body["session_id"].(string)

	status, body := doRequest(t, app, jsonRequest(t, "/process", models.ProcessRequest{Message: "Hi", UserSessionID: sessionID}))
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "invalid_state", body["kind"])
}

func TestProcessMalformedBody(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")

	status, body := doRequest(t, app, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "validation_error", body["kind"])
}

func TestStoreInterviewMissingConversation(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, jsonRequest(t, "/store_interview", map[string]any{"userSessionId": "abc"}))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Missing conversation", body["error"])
}

func TestGetFeedbackBeforeTranscript(t *testing.T) {
	app := newTestApp(t)

	_, body := doRequest(t, app, intakeRequest(t, validIntake(), "", ""))
	sessionID := body["session_id"].(string)

	status, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/create_interviewer?userSessionId="+sessionID, nil))
	require.Equal(t, fiber.StatusOK, status)

	status, body = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/get_feedback?userSessionId="+sessionID, nil))
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Transcript not found", body["error"])
}
