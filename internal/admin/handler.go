// Package admin serves the administrator endpoints: the pending domain queue,
// organization and user verification.
package admin

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skillproof/backend/internal/apierror"
	"github.com/skillproof/backend/internal/middleware"
	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/internal/store"
	"github.com/skillproof/backend/internal/verification"
	"github.com/skillproof/backend/pkg/response"
)

// Handler handles admin HTTP endpoints. Mount it behind JWT and RequireRole(admin).
type Handler struct {
	store  store.Store
	engine *verification.Engine
	logger *zap.Logger
}

// NewHandler creates an admin handler.
func NewHandler(st store.Store, engine *verification.Engine, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: st, engine: engine, logger: logger}
}

// ApproveRequest is the optional body for POST /admin/pending-domains/:id/approve.
type ApproveRequest struct {
	Name           string `json:"name"`
	Location       string `json:"location"`
	Industry       string `json:"industry"`
	Website        string `json:"website"`
	EnrollmentDate string `json:"enrollment_date"`
	RoleInCompany  string `json:"role_in_company"`
}

// ApproveResponse reports the outcome of an approval.
type ApproveResponse struct {
	RequestID           uuid.UUID            `json:"request_id"`
	Organization        *models.Organization `json:"organization"`
	OrganizationCreated bool                 `json:"organization_created"`
	SubmitterVerified   bool                 `json:"submitter_verified"`
	VerifiedCount       int                  `json:"verified_count"`
}

// ListPendingDomains handles GET /admin/pending-domains?kind=&status=.
func (h *Handler) ListPendingDomains(c *gin.Context) {
	var f models.PendingDomainFilter
	if k := c.Query("kind"); k != "" {
		kind, err := models.ParseOrgKind(k)
		if err != nil {
			apierror.Respond(c, h.logger, err)
			return
		}
		f.Kind = kind
	}
	switch s := models.PendingStatus(c.Query("status")); s {
	case "", models.PendingStatusPending, models.PendingStatusApproved:
		f.Status = s
	default:
		response.BadRequest(c, "status must be pending or approved")
		return
	}
	list, err := h.store.Stores().PendingDomains.List(c.Request.Context(), f)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// ApprovePendingDomain handles POST /admin/pending-domains/:id/approve.
func (h *Handler) ApprovePendingDomain(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	var body ApproveRequest
	if err := c.ShouldBindJSON(&body); err != nil && err != io.EOF {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	ov := verification.ApprovalOverrides{
		Name:          body.Name,
		Location:      body.Location,
		Industry:      body.Industry,
		Website:       body.Website,
		RoleInCompany: body.RoleInCompany,
	}
	if body.EnrollmentDate != "" {
		d, err := time.Parse(time.DateOnly, body.EnrollmentDate)
		if err != nil {
			response.BadRequest(c, "enrollment_date must be YYYY-MM-DD")
			return
		}
		ov.EnrollmentDate = &d
	}

	res, err := h.engine.ApprovePendingDomain(c.Request.Context(), id, actor, ov)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	response.OK(c, ApproveResponse{
		RequestID:           res.RequestID,
		Organization:        res.Organization,
		OrganizationCreated: res.OrganizationCreated,
		SubmitterVerified:   res.SubmitterVerified,
		VerifiedCount:       res.VerifiedCount,
	})
}

// ListOrganizations handles GET /admin/organizations?kind=.
func (h *Handler) ListOrganizations(c *gin.Context) {
	var kind models.OrgKind
	if k := c.Query("kind"); k != "" {
		var err error
		if kind, err = models.ParseOrgKind(k); err != nil {
			apierror.Respond(c, h.logger, err)
			return
		}
	}
	list, err := h.store.Stores().Organizations.List(c.Request.Context(), kind)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// VerifyOrganization handles POST /admin/organizations/:id/verify.
func (h *Handler) VerifyOrganization(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	org, err := h.engine.VerifyOrganization(c.Request.Context(), id)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	response.OK(c, org)
}

// ListUsers handles GET /admin/users.
func (h *Handler) ListUsers(c *gin.Context) {
	list, err := h.store.Stores().Users.List(c.Request.Context())
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

// VerifyUser handles POST /admin/users/:id/verify.
func (h *Handler) VerifyUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor, _ := middleware.UserID(c)
	u, err := h.engine.VerifyUser(c.Request.Context(), actor, id)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	response.OK(c, u.ToPublic())
}

// ListUserAffiliations handles GET /admin/users/:id/affiliations.
func (h *Handler) ListUserAffiliations(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	st := h.store.Stores()
	if _, err := st.Users.GetByID(ctx, id); err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	list, err := st.Affiliations.ListByUser(ctx, id)
	if err != nil {
		apierror.Respond(c, h.logger, err)
		return
	}
	response.OK(c, list)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
