package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/mock-interviewer/internal/apperrors"
	"alfredoptarigan/mock-interviewer/internal/models"
	"alfredoptarigan/mock-interviewer/internal/repositories"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// IntakeForm holds the raw intake fields as submitted by the client.
type IntakeForm struct {
	DesiredJob    string
	QuestionCount string
	Difficulty    string
	Company       string
}

type CreateSessionResult struct {
	SessionID  string
	DataFile   string
	ResumeFile string
	Session    *models.Session
}

// InterviewService drives a session through
// created -> questions_pending -> interviewing -> awaiting_feedback -> complete.
type InterviewService interface {
	CreateSession(ctx context.Context, form IntakeForm, resume *multipart.FileHeader) (*CreateSessionResult, error)
	GenerateQuestions(ctx context.Context, sessionID string) ([]string, error)
	Respond(ctx context.Context, sessionID, userUtterance string) (string, error)
	StoreTranscript(ctx context.Context, sessionID string, conversation []byte) (string, error)
	ComputeFeedback(ctx context.Context, sessionID string) (*models.Feedback, error)
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
}

type interviewService struct {
	repo      repositories.SessionRepository
	storage   StorageService
	parser    ResumeParser
	generator QuestionGenerator
	responder DialogueResponder
	scorer    FeedbackScorer
	indexer   Worker
	locks     *sessionLocks
	now       func() time.Time
	newID     func() string
}

// NewInterviewService wires the session controller. indexer may be nil when
// the question bank is disabled.
func NewInterviewService(
	repo repositories.SessionRepository,
	storage StorageService,
	parser ResumeParser,
	generator QuestionGenerator,
	responder DialogueResponder,
	scorer FeedbackScorer,
	indexer Worker,
) InterviewService {
	return &interviewService{
		repo:      repo,
		storage:   storage,
		parser:    parser,
		generator: generator,
		responder: responder,
		scorer:    scorer,
		indexer:   indexer,
		locks:     newSessionLocks(),
		now:       time.Now,
		newID:     GenerateSessionID,
	}
}

// GenerateSessionID returns a timestamp-derived id with a random suffix so
// two intakes in the same second never collide.
func GenerateSessionID() string {
	return fmt.Sprintf("%s-%s", time.Now().Format("20060102150405"), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// NormalizeSessionID accepts ids with or without the ".json" suffix of the
// intake document name.
func NormalizeSessionID(raw string) (string, error) {
	id := strings.TrimSuffix(strings.TrimSpace(raw), ".json")
	if id == "" {
		return "", apperrors.Validation("Missing userSessionId")
	}
	if !sessionIDPattern.MatchString(id) {
		return "", apperrors.Validation("Invalid userSessionId")
	}
	return id, nil
}

func (s *interviewService) CreateSession(ctx context.Context, form IntakeForm, resume *multipart.FileHeader) (*CreateSessionResult, error) {
	intake, err := validateIntake(form)
	if err != nil {
		return nil, err
	}

	id := s.newID()
	intake.SubmittedAt = s.now()

	resumeFile := ""
	if resume != nil {
		filename, filePath, err := s.storage.SaveResume(id, resume)
		if err != nil {
			var rejected *FileRejectedError
			if errors.As(err, &rejected) {
				return nil, apperrors.Validation("%s", rejected.Reason)
			}
			return nil, apperrors.Storage(err, "failed to store resume")
		}
		resumeFile = filename
		intake.ResumePath = filePath
	}

	session := &models.Session{
		ID:     id,
		Intake: *intake,
		State:  models.StateCreated,
	}

	if err := s.repo.Create(session); err != nil {
		if resumeFile != "" {
			s.storage.DeleteFile(resumeFile)
		}
		return nil, apperrors.Storage(err, "failed to store intake")
	}

	log.Printf("✅ Session %s created for %s at %s\n", id, intake.DesiredJob, intake.Company)

	return &CreateSessionResult{
		SessionID:  id,
		DataFile:   id + ".json",
		ResumeFile: resumeFile,
		Session:    session,
	}, nil
}

func validateIntake(form IntakeForm) (*models.Intake, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"desiredJob", form.DesiredJob},
		{"questionCount", form.QuestionCount},
		{"difficulty", form.Difficulty},
		{"company", form.Company},
	}

	var missing []string
	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.Validation("Missing fields: %s", strings.Join(missing, ", "))
	}

	count, err := strconv.Atoi(strings.TrimSpace(form.QuestionCount))
	if err != nil || count < 1 {
		return nil, apperrors.Validation("questionCount must be a positive integer")
	}

	return &models.Intake{
		DesiredJob:    strings.TrimSpace(form.DesiredJob),
		QuestionCount: count,
		Difficulty:    strings.TrimSpace(form.Difficulty),
		Company:       strings.TrimSpace(form.Company),
	}, nil
}

func (s *interviewService) GenerateQuestions(ctx context.Context, sessionID string) ([]string, error) {
	id, err := NormalizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.loadSession(id)
	if err != nil {
		return nil, err
	}

	switch session.State {
	case models.StateCreated:
		if err := s.repo.UpdateState(id, models.StateQuestionsPending); err != nil {
			return nil, apperrors.Storage(err, "failed to update session state")
		}
	case models.StateQuestionsPending:
	default:
		return nil, apperrors.NotFound("No session awaiting questions; session is %s", session.State)
	}

	log.Printf("🤖 Generating questions for session %s\n", id)
	generated, err := s.generator.Generate(ctx, QuestionRequest{
		ResumeText:  s.resumeText(session),
		JobPosition: session.Intake.DesiredJob,
		Company:     session.Intake.Company,
		Difficulty:  session.Intake.Difficulty,
		Count:       session.Intake.QuestionCount,
	})
	if err != nil {
		log.Printf("❌ Question generation failed for session %s: %v\n", id, err)
		return nil, ensureKind(err, apperrors.KindUpstream, "question generation failed")
	}

	questions := cleanQuestions(generated)
	if len(questions) == 0 {
		return nil, apperrors.New(apperrors.KindUpstream, "question generator returned no usable questions")
	}

	log.Println("💾 Saving generated questions...")
	if err := s.repo.SaveQuestions(id, questions); err != nil {
		return nil, apperrors.Storage(err, "failed to store questions")
	}

	if s.indexer != nil {
		s.indexer.EnqueueJob(id)
	}

	return questions, nil
}

// resumeText extracts the resume once and caches it on the session. Failures
// leave the interview running without resume context.
func (s *interviewService) resumeText(session *models.Session) string {
	if session.ResumeText != "" || session.Intake.ResumePath == "" {
		return session.ResumeText
	}

	text, err := s.parser.ExtractText(session.Intake.ResumePath)
	if err != nil {
		log.Printf("⚠️  Warning: Failed to parse resume for session %s: %v\n", session.ID, err)
		return ""
	}
	if text == "" {
		return ""
	}

	if err := s.repo.SaveResumeText(session.ID, text); err != nil {
		log.Printf("⚠️  Warning: Failed to cache resume text for session %s: %v\n", session.ID, err)
	}
	return text
}

func cleanQuestions(raw []string) []string {
	questions := make([]string, 0, len(raw))
	for _, q := range raw {
		q = strings.TrimSpace(q)
		if q != "" {
			questions = append(questions, q)
		}
	}
	return questions
}

func (s *interviewService) Respond(ctx context.Context, sessionID, userUtterance string) (string, error) {
	id, err := NormalizeSessionID(sessionID)
	if err != nil {
		return "", err
	}

	userUtterance = strings.TrimSpace(userUtterance)
	if userUtterance == "" {
		return "", apperrors.Validation("Missing message")
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.loadSession(id)
	if err != nil {
		return "", err
	}
	if session.State != models.StateInterviewing {
		return "", apperrors.InvalidState("Session is %s, not interviewing", session.State)
	}

	reply, err := s.responder.RespondTo(ctx, userUtterance, RemainingQuestions(session))
	if err != nil {
		log.Printf("❌ Responder failed for session %s: %v\n", id, err)
		return "", apperrors.Wrap(apperrors.KindProcessing, err, "failed to process response")
	}

	now := s.now()
	turns := []models.Turn{
		{Speaker: models.SpeakerCandidate, Text: userUtterance, Timestamp: now},
		{Speaker: models.SpeakerInterviewer, Text: reply, Timestamp: now},
	}
	if err := s.repo.AppendTurns(id, turns...); err != nil {
		return "", apperrors.Storage(err, "failed to store turns")
	}

	return reply, nil
}

// RemainingQuestions lists the scripted questions the interviewer has not yet
// asked verbatim, in their original order.
func RemainingQuestions(session *models.Session) []string {
	asked := make(map[string]bool)
	for _, turn := range session.Turns {
		if turn.Speaker == models.SpeakerInterviewer {
			asked[strings.TrimSpace(turn.Text)] = true
		}
	}

	remaining := make([]string, 0, len(session.Questions))
	for _, q := range session.Questions {
		if !asked[strings.TrimSpace(q)] {
			remaining = append(remaining, q)
		}
	}
	return remaining
}

func (s *interviewService) StoreTranscript(ctx context.Context, sessionID string, conversation []byte) (string, error) {
	id, err := NormalizeSessionID(sessionID)
	if err != nil {
		return "", err
	}
	if isEmptyConversation(conversation) {
		return "", apperrors.Validation("Missing conversation")
	}
	if !json.Valid(conversation) {
		return "", apperrors.Validation("conversation must be valid JSON")
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.loadSession(id)
	if err != nil {
		return "", err
	}

	switch session.State {
	case models.StateInterviewing, models.StateAwaitingFeedback:
	default:
		return "", apperrors.InvalidState("Cannot store a transcript while session is %s", session.State)
	}

	if err := s.repo.SaveTranscript(id, conversation); err != nil {
		return "", apperrors.Storage(err, "failed to store transcript")
	}

	log.Printf("💾 Transcript stored for session %s (%d bytes)\n", id, len(conversation))
	return id + ".json", nil
}

func isEmptyConversation(conversation []byte) bool {
	switch string(bytes.TrimSpace(conversation)) {
	case "", "null", `""`, "[]", "{}":
		return true
	}
	return false
}

func (s *interviewService) ComputeFeedback(ctx context.Context, sessionID string) (*models.Feedback, error) {
	id, err := NormalizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.loadSession(id)
	if err != nil {
		return nil, err
	}

	if session.State == models.StateComplete && session.Feedback != nil {
		return session.Feedback, nil
	}
	if session.State.Before(models.StateAwaitingFeedback) || !session.HasTranscript() {
		return nil, apperrors.NotFound("Transcript not found")
	}

	log.Printf("🤖 Scoring interview for session %s\n", id)
	raw, err := s.scorer.Score(ctx, FormatConversation(session.Conversation))
	if err != nil {
		log.Printf("❌ Scoring failed for session %s: %v\n", id, err)
		return nil, ensureKind(err, apperrors.KindUpstream, "feedback scoring failed")
	}

	feedback, err := ValidateFeedback(raw)
	if err != nil {
		log.Printf("❌ Scorer output rejected for session %s: %v\n", id, err)
		return nil, err
	}

	if err := s.repo.SaveFeedback(id, feedback); err != nil {
		return nil, apperrors.Storage(err, "failed to store feedback")
	}

	log.Printf("✅ Feedback stored for session %s\n", id)
	return feedback, nil
}

func (s *interviewService) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	id, err := NormalizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	return s.loadSession(id)
}

func (s *interviewService) loadSession(id string) (*models.Session, error) {
	session, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, apperrors.NotFound("Session not found")
		}
		return nil, apperrors.Storage(err, "failed to load session")
	}
	return session, nil
}

// ensureKind keeps an already classified error and wraps anything else.
func ensureKind(err error, kind apperrors.Kind, message string) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.Wrap(kind, err, "%s", message)
}
