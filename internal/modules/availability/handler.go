package availability

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
	public.GET("/professionals/:id/slots", h.ListSlots)
	public.GET("/professionals/:id/slots/overlap", h.HasOverlap)
	public.GET("/slots/:id", h.GetSlot)

	protected.POST("/professionals/:id/slots",
		middleware.RequireRole(domain.RoleProfessional, domain.RoleOperator), h.PublishSlot)
	protected.DELETE("/slots/:id",
		middleware.RequireRole(domain.RoleProfessional, domain.RoleOperator), h.DeleteSlot)
	protected.POST("/slots/:id/reserve", middleware.OperatorOnly(), h.ReserveSlot)
	protected.POST("/slots/:id/release", middleware.OperatorOnly(), h.ReleaseSlot)
}

// ListSlots handles GET /professionals/:id/slots?free=true
func (h *Handler) ListSlots(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}

	var (
		slots []domain.AvailabilitySlot
		err   error
	)
	if c.Query("free") == "true" {
		slots, err = h.service.ListFreeSlots(c.Request.Context(), id)
	} else {
		slots, err = h.service.ListAllSlots(c.Request.Context(), id)
	}
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slots": slots})
}

func (h *Handler) HasOverlap(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	start, ok := params.RequiredTime(c, "start")
	if !ok {
		return
	}
	end, ok := params.RequiredTime(c, "end")
	if !ok {
		return
	}

	overlap, err := h.service.HasOverlap(c.Request.Context(), id, start, end)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"overlap": overlap})
}

func (h *Handler) GetSlot(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	slot, err := h.service.GetSlot(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slot": slot})
}

func (h *Handler) PublishSlot(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	var req PublishSlotRequest
	if !params.Bind(c, &req) {
		return
	}

	slot, err := h.service.PublishSlot(c.Request.Context(), middleware.CurrentIdentity(c), id, req.StartTime, req.EndTime)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"slot": slot})
}

func (h *Handler) DeleteSlot(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteSlot(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) ReserveSlot(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	slot, err := h.service.ReserveSlot(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slot": slot})
}

func (h *Handler) ReleaseSlot(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	slot, err := h.service.ReleaseSlot(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"slot": slot})
}
