package lifecycle

import (
	"net/http"

	"clickservice/internal/domain"
	"clickservice/internal/middleware"
	"clickservice/internal/pkg/params"
	"clickservice/internal/pkg/response"
	"clickservice/internal/repository"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	requests := protected.Group("/requests")
	{
		requests.POST("", middleware.RequireRole(domain.RoleClient, domain.RoleOperator), h.Create)
		requests.GET("", h.List)
		requests.GET("/:id", h.Get)
		requests.DELETE("/:id", h.Delete)

		requests.GET("/:id/candidates", middleware.OperatorOnly(), h.Candidates)
		requests.POST("/:id/auto-assign", middleware.OperatorOnly(), h.AutoAssign)
		requests.POST("/:id/assign", middleware.OperatorOnly(), h.Assign)
		requests.POST("/:id/complete", middleware.RequireRole(domain.RoleProfessional, domain.RoleOperator), h.Complete)
		requests.POST("/:id/cancel", h.Cancel)
		requests.POST("/:id/review", h.Review)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if !params.Bind(c, &req) {
		return
	}
	r, err := h.service.Create(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"request": r})
}

// List handles GET /requests?state=&service_id=&client_id=&professional_id=
// Clients only ever see their own requests.
func (h *Handler) List(c *gin.Context) {
	var f repository.RequestFilter
	var ok bool
	if f.ServiceID, ok = params.OptionalInt64(c, "service_id"); !ok {
		return
	}
	if f.ClientID, ok = params.OptionalInt64(c, "client_id"); !ok {
		return
	}
	if f.ProfessionalID, ok = params.OptionalInt64(c, "professional_id"); !ok {
		return
	}
	f.State = domain.RequestState(c.Query("state"))

	if id := middleware.CurrentIdentity(c); id.IsClient() {
		f.ClientID = id.UserID
	}

	list, err := h.service.Find(c.Request.Context(), f)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"requests": list})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	r, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if actor := middleware.CurrentIdentity(c); actor.IsClient() && !actor.Is(r.ClientIdentity) {
		response.FromError(c, domain.Forbidden("request %d belongs to another client", id))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": r})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) Candidates(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	list, err := h.service.MatchCandidates(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"candidates": list})
}

func (h *Handler) AutoAssign(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	r, err := h.service.AutoAssign(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": r})
}

func (h *Handler) Assign(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	var req AssignRequest
	if !params.Bind(c, &req) {
		return
	}
	r, err := h.service.Assign(c.Request.Context(), middleware.CurrentIdentity(c), id, req.ProfessionalID, req.SlotID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": r})
}

func (h *Handler) Complete(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	var req CompleteRequest
	if !params.Bind(c, &req) {
		return
	}
	out, err := h.service.Complete(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	r, err := h.service.Cancel(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": r})
}

func (h *Handler) Review(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !params.Bind(c, &req) {
		return
	}
	review, err := h.service.AttachReview(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"review": review})
}
