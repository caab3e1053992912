package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/mock-interviewer/internal/apperrors"
	"alfredoptarigan/mock-interviewer/internal/models"
	"alfredoptarigan/mock-interviewer/internal/services"
)

type InterviewHandler struct {
	interviewService services.InterviewService
}

func NewInterviewHandler(interviewService services.InterviewService) *InterviewHandler {
	return &InterviewHandler{
		interviewService: interviewService,
	}
}

// RegisterRoutes mounts the interview endpoints at the application root.
func (h *InterviewHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/store_user_info", h.HandleStoreUserInfo)
	router.Get("/create_interviewer", h.HandleCreateInterviewer)
	router.Post("/process", h.HandleProcess)
	router.Post("/store_interview", h.HandleStoreInterview)
	router.Get("/get_feedback", h.HandleGetFeedback)
}

// HandleStoreUserInfo handles POST /store_user_info
func (h *InterviewHandler) HandleStoreUserInfo(c *fiber.Ctx) error {
	form := services.IntakeForm{
		DesiredJob:    c.FormValue("desiredJob"),
		QuestionCount: c.FormValue("questionCount"),
		Difficulty:    c.FormValue("difficulty"),
		Company:       c.FormValue("company"),
	}

	// The resume is optional; a missing part or a non-multipart body both
	// mean no resume.
	resume, err := c.FormFile("resume")
	if err != nil {
		resume = nil
	}

	result, err := h.interviewService.CreateSession(c.UserContext(), form, resume)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(models.StoreUserInfoResponse{
		Message:    "User info stored successfully",
		DataFile:   result.DataFile,
		ResumeFile: result.ResumeFile,
		SessionID:  result.SessionID,
	})
}

// HandleCreateInterviewer handles GET /create_interviewer?userSessionId=
func (h *InterviewHandler) HandleCreateInterviewer(c *fiber.Ctx) error {
	sessionID, err := services.NormalizeSessionID(c.Query("userSessionId"))
	if err != nil {
		return err
	}

	questions, err := h.interviewService.GenerateQuestions(c.UserContext(), sessionID)
	if err != nil {
		return err
	}

	return c.JSON(models.CreateInterviewerResponse{
		Message:   "Interviewer created successfully",
		Questions: questions,
		SessionID: sessionID,
	})
}

// HandleProcess handles POST /process
func (h *InterviewHandler) HandleProcess(c *fiber.Ctx) error {
	var req models.ProcessRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Invalid request payload")
	}

	reply, err := h.interviewService.Respond(c.UserContext(), req.UserSessionID, req.Message)
	if err != nil {
		return err
	}

	return c.JSON(models.ProcessResponse{Reply: reply})
}

// HandleStoreInterview handles POST /store_interview
func (h *InterviewHandler) HandleStoreInterview(c *fiber.Ctx) error {
	var req models.StoreInterviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Invalid request payload")
	}

	filename, err := h.interviewService.StoreTranscript(c.UserContext(), req.UserSessionID, req.Conversation)
	if err != nil {
		return err
	}

	return c.JSON(models.StoreInterviewResponse{
		Message:  "Interview stored successfully",
		Filename: filename,
	})
}

// HandleGetFeedback handles GET /get_feedback?userSessionId=
func (h *InterviewHandler) HandleGetFeedback(c *fiber.Ctx) error {
	feedback, err := h.interviewService.ComputeFeedback(c.UserContext(), c.Query("userSessionId"))
	if err != nil {
		return err
	}

	return c.JSON(feedback)
}
