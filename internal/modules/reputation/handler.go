package reputation

import (
	"net/http"

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
	public.GET("/professionals/:id/reviews", h.ListForProfessional)
	public.GET("/professionals/:id/rating", h.RatingSummary)
	public.GET("/requests/:id/review", h.GetByOrder)

	protected.GET("/reviews/mine", h.ListMine)

	ops := protected.Group("/commissions", middleware.OperatorOnly())
	ops.GET("", h.ListCommissions)
	ops.GET("/summary", h.Summary)
	ops.POST("", h.RecordCommission)
	ops.GET("/:id", h.GetCommission)
	ops.PUT("/:id", h.UpdateCommission)
	ops.DELETE("/:id", h.DeleteCommission)
}

func (h *Handler) ListForProfessional(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	reviews, err := h.service.ListReviewsForProfessional(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reviews": reviews})
}

func (h *Handler) RatingSummary(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	summary, err := h.service.RatingSummary(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rating": summary})
}

func (h *Handler) GetByOrder(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	review, err := h.service.GetReviewByOrder(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"review": review})
}

func (h *Handler) ListMine(c *gin.Context) {
	reviews, err := h.service.ListReviewsByReviewer(c.Request.Context(), middleware.CurrentIdentity(c).UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reviews": reviews})
}

// ListCommissions handles GET /commissions?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListCommissions(c *gin.Context) {
	from, ok := params.OptionalDate(c, "from")
	if !ok {
		return
	}
	to, ok := params.OptionalDate(c, "to")
	if !ok {
		return
	}
	list, err := h.service.ListCommissions(c.Request.Context(), from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"commissions": list})
}

func (h *Handler) Summary(c *gin.Context) {
	from, ok := params.OptionalDate(c, "from")
	if !ok {
		return
	}
	to, ok := params.OptionalDate(c, "to")
	if !ok {
		return
	}
	summary, err := h.service.CommissionSummary(c.Request.Context(), from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

func (h *Handler) RecordCommission(c *gin.Context) {
	var req RecordCommissionRequest
	if !params.Bind(c, &req) {
		return
	}
	commission, err := h.service.RecordCommission(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"commission": commission})
}

func (h *Handler) GetCommission(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	commission, err := h.service.GetCommission(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"commission": commission})
}

func (h *Handler) UpdateCommission(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	var req UpdateCommissionRequest
	if !params.Bind(c, &req) {
		return
	}
	commission, err := h.service.UpdateCommission(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"commission": commission})
}

func (h *Handler) DeleteCommission(c *gin.Context) {
	id, ok := params.ID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteCommission(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}
