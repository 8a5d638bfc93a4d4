package vehicle

import (
	"errors"
	"net/http"

	"github.com/ayushm3018/Vechicle-Request-System/internal/common/logger"
	"github.com/gin-gonic/gin"
)

// Handler 车辆登记的 HTTP 处理器。所有路由都要求 admin 角色（由上层路由组保证）。
type Handler struct {
	svc *Service
	log logger.Logger
}

func NewHandler(svc *Service, log logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// RegisterRoutes 挂载车辆路由到已鉴权的 admin 路由组。
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	vehicles := rg.Group("/vehicles")
	vehicles.GET("", h.list)
	vehicles.GET("/available", h.listAvailable)
	vehicles.GET("/:id", h.get)
	vehicles.POST("", h.create)
	vehicles.PUT("/:id", h.update)
	vehicles.DELETE("/:id", h.remove)
}

type upsertRequest struct {
	VehicleNumber string `json:"vehicle_number"`
	MakeModel     string `json:"make_model"`
	DriverName    string `json:"driver_name"`
	IsAvailable   *bool  `json:"is_available"`
}

func (h *Handler) list(c *gin.Context) {
	vehicles, err := h.svc.List(c.Request.Context(), false)
	if err != nil {
		h.serverError(c, "Server error fetching vehicles", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
}

func (h *Handler) listAvailable(c *gin.Context) {
	vehicles, err := h.svc.List(c.Request.Context(), true)
	if err != nil {
		h.serverError(c, "Server error fetching available vehicles", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
}

func (h *Handler) get(c *gin.Context) {
	v, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Vehicle not found"})
			return
		}
		h.serverError(c, "Server error fetching vehicle", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": v})
}

func (h *Handler) create(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	v, err := h.svc.Create(c.Request.Context(), UpsertInput{
		VehicleNumber: req.VehicleNumber,
		MakeModel:     req.MakeModel,
		DriverName:    req.DriverName,
		IsAvailable:   req.IsAvailable,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateNumber) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Vehicle with this number already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Vehicle added successfully",
		"vehicle": v,
	})
}

func (h *Handler) update(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	v, err := h.svc.Update(c.Request.Context(), c.Param("id"), UpsertInput{
		VehicleNumber: req.VehicleNumber,
		MakeModel:     req.MakeModel,
		DriverName:    req.DriverName,
		IsAvailable:   req.IsAvailable,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Vehicle not found"})
		case errors.Is(err, ErrDuplicateNumber):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Vehicle with this number already exists"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Vehicle updated successfully",
		"vehicle": v,
	})
}

func (h *Handler) remove(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Vehicle not found"})
		case errors.Is(err, ErrInUse):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot delete vehicle. It has been assigned to requests."})
		default:
			h.serverError(c, "Server error deleting vehicle", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted successfully"})
}

func (h *Handler) serverError(c *gin.Context, msg string, err error) {
	if h.log != nil {
		h.log.Errorf("%s: %v", msg, err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": msg})
}
