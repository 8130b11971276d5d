package professional

import (
	"net/http"

	"clickservice/internal/domain"
	"clickservice/internal/middleware"
	"clickservice/internal/pkg/params"
	"clickservice/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/professionals", h.List)
	public.GET("/professionals/:id", h.Get)

	protected.GET("/professionals/me", h.Me)
	protected.POST("/professionals",
		middleware.RequireRole(domain.RoleProfessional, domain.RoleOperator), h.Register)
	protected.PATCH("/professionals/:id", h.Update)
	protected.PUT("/professionals/:id/capabilities", h.AssignCapabilities)
	protected.DELETE("/professionals/:id", middleware.OperatorOnly(), h.Delete)
}

// List handles GET /professionals?service_id=&available=true
func (h *Handler) List(c *gin.Context) {
	serviceID, ok := params.OptionalInt64(c, "service_id")
	if !ok {
		return
	}

	var (
		list []domain.Professional
		err  error
	)
	switch {
	case serviceID > 0:
		list, err = h.service.FindByCapability(c.Request.Context(), serviceID)
	case c.Query("available") == "true":
		list, err = h.service.ListAvailable(c.Request.Context())
	default:
		list, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"professionals": list})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.FindByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"professional": p})
}

func (h *Handler) Me(c *gin.Context) {
	p, err := h.service.FindByOwnerIdentity(c.Request.Context(), middleware.CurrentIdentity(c).UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"professional": p})
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !params.Bind(c, &req) {
		return
	}
	p, err := h.service.Register(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"professional": p})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	var req UpdateRequest
	if !params.Bind(c, &req) {
		return
	}
	p, err := h.service.Update(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"professional": p})
}

func (h *Handler) AssignCapabilities(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	var req CapabilitiesRequest
	if !params.Bind(c, &req) {
		return
	}
	p, err := h.service.AssignCapabilities(c.Request.Context(), middleware.CurrentIdentity(c), id, req.ServiceIDs)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"professional": p})
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
