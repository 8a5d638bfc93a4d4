package request

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ayushm3018/Vechicle-Request-System/internal/common/logger"
	"github.com/ayushm3018/Vechicle-Request-System/internal/common/middleware"
	"github.com/ayushm3018/Vechicle-Request-System/internal/user"
	"github.com/gin-gonic/gin"
)

// Handler 申请单的 HTTP 处理器。
// 路径与历史接口保持兼容：/requests、/requests/my-requests、
// /requests/:id/approve 等。
type Handler struct {
	svc *Service
	log logger.Logger
}

func NewHandler(svc *Service, log logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// RegisterRoutes 挂载申请单路由到已鉴权的路由组，内部再按角色细分。
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	requests := rg.Group("/requests")

	employee := requests.Group("", middleware.RequireRole(string(user.RoleEmployee)))
	employee.POST("", h.submit)
	employee.GET("/my-requests", h.myRequests)

	admin := requests.Group("", middleware.RequireRole(string(user.RoleAdmin)))
	admin.GET("", h.listAll)
	admin.GET("/stats/dashboard", h.dashboard)
	admin.GET("/:id", h.get)
	admin.POST("/:id/approve", h.approve)
	admin.POST("/:id/reject", h.reject)
}

func (h *Handler) submit(c *gin.Context) {
	ai, ok := middleware.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing auth context"})
		return
	}

	var in SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	req, err := h.svc.Submit(c.Request.Context(), ai.UserID, in)
	if err != nil {
		h.writeError(c, err, "Server error submitting request")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Vehicle request submitted successfully",
		"request": req,
	})
}

func (h *Handler) myRequests(c *gin.Context) {
	ai, ok := middleware.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing auth context"})
		return
	}

	requests, err := h.svc.ListForEmployee(c.Request.Context(), ai.UserID)
	if err != nil {
		h.writeError(c, err, "Server error fetching requests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func (h *Handler) listAll(c *gin.Context) {
	filter := ListAllFilter{
		Status:   Status(c.Query("status")),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "limit", 10),
	}

	requests, total, err := h.svc.ListAll(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err, "Server error fetching requests")
		return
	}

	pages := total / int64(filter.PageSize)
	if total%int64(filter.PageSize) != 0 {
		pages++
	}
	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"pagination": gin.H{
			"page":  filter.Page,
			"limit": filter.PageSize,
			"total": total,
			"pages": pages,
		},
	})
}

func (h *Handler) get(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Request not found"})
			return
		}
		h.writeError(c, err, "Server error fetching request")
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": d})
}

type approveRequest struct {
	VehicleID string `json:"vehicle_id"`
}

func (h *Handler) approve(c *gin.Context) {
	ai, ok := middleware.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing auth context"})
		return
	}

	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if _, err := h.svc.Approve(c.Request.Context(), c.Param("id"), req.VehicleID, ai.UserID); err != nil {
		h.writeError(c, err, "Server error approving request")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request approved successfully"})
}

type rejectRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

func (h *Handler) reject(c *gin.Context) {
	ai, ok := middleware.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing auth context"})
		return
	}

	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if _, err := h.svc.Reject(c.Request.Context(), c.Param("id"), req.RejectionReason, ai.UserID); err != nil {
		h.writeError(c, err, "Server error rejecting request")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request rejected successfully"})
}

func (h *Handler) dashboard(c *gin.Context) {
	stats, err := h.svc.DashboardStats(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Server error fetching dashboard statistics")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// writeError 把引擎的错误分类映射到 HTTP 状态码。
// 未识别的错误一律 500 + 通用消息，内部细节只进日志。
func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	if ve, ok := AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Validation errors",
			"errors":  ve.Fields,
		})
		return
	}
	switch {
	case errors.Is(err, ErrNotFoundOrNotPending):
		c.JSON(http.StatusNotFound, gin.H{"message": "Request not found or not pending"})
	case errors.Is(err, ErrVehicleUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Vehicle not found or not available"})
	default:
		if h.log != nil {
			h.log.Errorf("%s: %v", fallback, err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
	}
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
