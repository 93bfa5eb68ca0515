package handler

import (
	"net/http"

	"pos-backend/internal/middleware"
	"pos-backend/internal/service"
	"pos-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type HoldHandler struct {
	holdService service.HoldService
}

func NewHoldHandler(holdService service.HoldService) *HoldHandler {
	return &HoldHandler{holdService: holdService}
}

func (h *HoldHandler) RegisterRoutes(router *gin.RouterGroup) {
	holds := router.Group("/api/holds")
	{
		holds.POST("", middleware.RequireAuth(), h.SaveHold)
		holds.GET("", middleware.RequireAuth(), h.ListHolds)
		holds.GET("/:id", middleware.RequireAuth(), h.GetHold)
		holds.DELETE("/:id", middleware.RequireAuth(), h.DeleteHold)
	}
}

// SaveHold parks an unfinished sale
// @Summary      Save hold
// @Description  Stores the cart as a hold. No payment guard, no stock movement, no ledger posting
// @Tags         holds
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SaveHoldRequest  true  "Save Hold Payload"
// @Success      201      {object}  response.Response{data=service.HoldResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/holds [post]
func (h *HoldHandler) SaveHold(c *gin.Context) {
	var req service.SaveHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	hold, err := h.holdService.Save(c.Request.Context(), middleware.Operator(c), req)
	if err != nil {
		status := http.StatusInternalServerError
		if service.IsValidationError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, response.Fail(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.OK(hold))
}

// ListHolds returns every parked sale
// @Summary      List holds
// @Tags         holds
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.HoldResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/holds [get]
func (h *HoldHandler) ListHolds(c *gin.Context) {
	holds, err := h.holdService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Fail(err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.OK(holds))
}

// GetHold returns one parked sale with its lines
// @Summary      Get hold
// @Tags         holds
// @Security     BearerAuth
// @Produce      json
// @Param        id  path      string  true  "Hold ID (UUID)"
// @Success      200  {object}  response.Response{data=service.HoldResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/holds/{id} [get]
func (h *HoldHandler) GetHold(c *gin.Context) {
	hold, err := h.holdService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Fail(err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.OK(hold))
}

// DeleteHold removes a parked sale
// @Summary      Delete hold
// @Description  Deletes the hold and its lines. Typically called by the client after the held sale is committed as an invoice
// @Tags         holds
// @Security     BearerAuth
// @Produce      json
// @Param        id  path      string  true  "Hold ID (UUID)"
// @Success      200  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/holds/{id} [delete]
func (h *HoldHandler) DeleteHold(c *gin.Context) {
	if err := h.holdService.Delete(c.Request.Context(), middleware.Operator(c), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, response.Fail(err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.OK(gin.H{"deleted": true}))
}
