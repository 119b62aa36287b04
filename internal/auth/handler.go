package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skillproof/backend/internal/apierror"
	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/internal/registration"
	"github.com/skillproof/backend/internal/store"
	"github.com/skillproof/backend/internal/verification"
	"github.com/skillproof/backend/pkg/response"
)

// StudentRequest is the body for POST /auth/register/student.
type StudentRequest struct {
	registration.Account
	UniversityName   string `json:"university_name"`
	UniversityDomain string `json:"university_domain"`
	GraduationYear   *int   `json:"graduation_year"`
	Skills           string `json:"skills"`
}

// GraduateRequest is the body for POST /auth/register/graduate.
type GraduateRequest struct {
	registration.Account
	UniversityName   string `json:"university_name"`
	UniversityDomain string `json:"university_domain"`
	GraduationYear   int    `json:"graduation_year"`
	CurrentPosition  string `json:"current_position"`
	Skills           string `json:"skills"`
}

// CompanyRequest is the body for POST /auth/register/company.
type CompanyRequest struct {
	registration.Account
	CompanyName   string `json:"company_name"`
	CompanyDomain string `json:"company_domain"`
	Industry      string `json:"industry"`
	Website       string `json:"website"`
}

// MentorRequest is the body for POST /auth/register/mentor.
type MentorRequest struct {
	registration.Account
	ExpertiseAreas string `json:"expertise_areas"`
	Bio            string `json:"bio"`
	Availability   string `json:"availability"`
}

// AdminRequest is the body for POST /admin/users.
type AdminRequest struct {
	registration.Account
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is returned after any registration.
type RegisterResponse struct {
	User             models.UserPublic `json:"user"`
	Verified         bool              `json:"verified"`
	PendingRequestID *uuid.UUID        `json:"pending_request_id,omitempty"`
	Message          string            `json:"message"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token   string                `json:"token"`
	User    models.UserPublic     `json:"user"`
	Profile models.ProfileSummary `json:"profile"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	workflow *registration.Workflow
	engine   *verification.Engine
	store    store.Store
	jwt      *JWTService
	logger   *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(workflow *registration.Workflow, engine *verification.Engine, st store.Store, jwt *JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{workflow: workflow, engine: engine, store: st, jwt: jwt, logger: logger}
}

// RegisterStudent handles POST /auth/register/student.
func (h *Handler) RegisterStudent(c *gin.Context) {
	var req StudentRequest
	if !bind(c, &req) {
		return
	}
	h.register(c, req.Account, &models.StudentProfile{
		UniversityName:   req.UniversityName,
		UniversityDomain: req.UniversityDomain,
		GraduationYear:   req.GraduationYear,
		Skills:           req.Skills,
	})
}

// RegisterGraduate handles POST /auth/register/graduate.
func (h *Handler) RegisterGraduate(c *gin.Context) {
	var req GraduateRequest
	if !bind(c, &req) {
		return
	}
	h.register(c, req.Account, &models.GraduateProfile{
		UniversityName:   req.UniversityName,
		UniversityDomain: req.UniversityDomain,
		GraduationYear:   req.GraduationYear,
		CurrentPosition:  req.CurrentPosition,
		Skills:           req.Skills,
	})
}

// RegisterCompany handles POST /auth/register/company.
func (h *Handler) RegisterCompany(c *gin.Context) {
	var req CompanyRequest
	if !bind(c, &req) {
		return
	}
	h.register(c, req.Account, &models.CompanyProfile{
		CompanyName:   req.CompanyName,
		CompanyDomain: req.CompanyDomain,
		Industry:      req.Industry,
		Website:       req.Website,
	})
}

// RegisterMentor handles POST /auth/register/mentor.
func (h *Handler) RegisterMentor(c *gin.Context) {
	var req MentorRequest
	if !bind(c, &req) {
		return
	}
	h.register(c, req.Account, &models.MentorProfile{
		ExpertiseAreas: req.ExpertiseAreas,
		Bio:            req.Bio,
		Availability:   req.Availability,
	})
}

// RegisterAdmin handles POST /admin/users. Mount behind an admin-only group.
func (h *Handler) RegisterAdmin(c *gin.Context) {
	var req AdminRequest
	if !bind(c, &req) {
		return
	}
	h.register(c, req.Account, &models.AdminProfile{})
}

func (h *Handler) register(c *gin.Context, acct registration.Account, profile models.Profile) {
	res, err := h.workflow.Register(c.Request.Context(), acct, profile)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	out := RegisterResponse{User: res.User.ToPublic(), Verified: res.Verified, Message: res.Message}
	if res.PendingRequest != nil {
		out.PendingRequestID = &res.PendingRequest.ID
	}
	response.Created(c, out)
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	user, err := h.engine.LoginGate(ctx, req.Email, req.Password)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}

	summary, err := h.store.Stores().Profiles.Summary(ctx, user.ID, user.Role)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		apierror.Respond(c, h.logger, err)
		return
	}

	token, err := h.jwt.Generate(user)
	if err != nil {
		h.logger.Error("generate token", zap.String("user_id", user.ID.String()), zap.Error(err))
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, TokenResponse{Token: token, User: user.ToPublic(), Profile: summary})
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return false
	}
	return true
}
