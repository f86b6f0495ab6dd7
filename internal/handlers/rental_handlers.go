package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"rentalhub/internal/common"
	"rentalhub/internal/models"
	"rentalhub/internal/services"

	"github.com/labstack/echo/v4"
)

const maxRentalIDLength = 32

// RentalHandlers handles HTTP requests for the rental lifecycle
type RentalHandlers struct {
	rentalService services.RentalService
}

func NewRentalHandlers(rentalService services.RentalService) *RentalHandlers {
	return &RentalHandlers{rentalService: rentalService}
}

// Register mounts the rental routes on g
func (h *RentalHandlers) Register(g *echo.Group) {
	g.GET("/rentals", h.ListRentals)
	g.POST("/rentals", h.CreateRental)
	g.GET("/rentals/:id", h.GetRental)
	g.PATCH("/rentals/:id", h.UpdateField)
	g.DELETE("/rentals/:id", h.DeleteRental)
	g.POST("/rentals/:id/actions", h.PerformAction)
	g.POST("/rentals/:id/recompute-totals", h.RecomputeTotals)
	g.POST("/rentals/:id/order-lines", h.AddLine)
	g.PUT("/rentals/:id/order-lines/:lineId", h.UpdateLine)
	g.DELETE("/rentals/:id/order-lines/:lineId", h.RemoveLine)
}

// RentalResponse is the aggregate plus its computed totals
type RentalResponse struct {
	Rental *models.RentalOrder `json:"rental"`
	Totals models.RentalTotals `json:"totals"`
}

// LineResponse is returned by line mutations
type LineResponse struct {
	Line   *models.OrderLine   `json:"line,omitempty"`
	Rental *models.RentalOrder `json:"rental"`
	Totals models.RentalTotals `json:"totals"`
}

type updateFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type actionRequest struct {
	Action string `json:"action"`
}

func newRentalResponse(order *models.RentalOrder) RentalResponse {
	return RentalResponse{Rental: order, Totals: order.Totals()}
}

func rentalIDParam(c echo.Context) (string, error) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" || len(id) > maxRentalIDLength {
		return "", common.ValidationError("invalid rental id")
	}
	return id, nil
}

// ListRentals handles GET /rentals?status=&customer=&limit=&offset=
func (h *RentalHandlers) ListRentals(c echo.Context) error {
	filter := &models.RentalFilter{Customer: c.QueryParam("customer")}

	if s := c.QueryParam("status"); s != "" {
		status := models.RentalStatus(s)
		filter.Status = &status
	}
	if l := c.QueryParam("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil {
			return common.SendValidationError(c, "limit", "must be an integer")
		}
		filter.Limit = limit
	}
	if o := c.QueryParam("offset"); o != "" {
		offset, err := strconv.Atoi(o)
		if err != nil {
			return common.SendValidationError(c, "offset", "must be an integer")
		}
		filter.Offset = offset
	}

	rentals, err := h.rentalService.ListRentals(c.Request().Context(), filter)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"rentals": rentals,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

// CreateRental handles POST /rentals
func (h *RentalHandlers) CreateRental(c echo.Context) error {
	var req models.RentalInput
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	order, err := h.rentalService.CreateRental(c.Request().Context(), &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, newRentalResponse(order))
}

// GetRental handles GET /rentals/:id
func (h *RentalHandlers) GetRental(c echo.Context) error {
	id, err := rentalIDParam(c)
	if err != nil {
		return common.SendError(c, err)
	}

	order, err := h.rentalService.GetRental(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, newRentalResponse(order))
}

// UpdateField handles PATCH /rentals/:id with {"field": ..., "value": ...}
func (h *RentalHandlers) UpdateField(c echo.Context) error {
	id, err := rentalIDParam(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var req updateFieldRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	order, err := h.rentalService.UpdateField(c.Request().Context(), id, req.Field, req.Value)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"rental": order,
		"field":  req.Field,
		"value":  req.Value,
	})
}

// DeleteRental handles DELETE /rentals/:id
func (h *RentalHandlers) DeleteRental(c echo.Context) error {
	id, err := rentalIDParam(c)
	if err != nil {
		return common.SendError(c, err)
	}
	if err := h.rentalService.DeleteRental(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// PerformAction handles POST /rentals/:id/actions
func (h *RentalHandlers) PerformAction(c echo.Context) error {
	id, err := rentalIDParam(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var req actionRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	result, err := h.rentalService.PerformAction(c.Request().Context(), id, req.Action)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// RecomputeTotals handles POST /rentals/:id/recompute-totals
func (h *RentalHandlers) RecomputeTotals(c echo.Context) error {
	id, err := rentalIDParam(c)
	if err != nil {
		return common.SendError(c, err)
	}

	order, err := h.rentalService.RecomputeTotals(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, newRentalResponse(order))
}

// AddLine handles POST /rentals/:id/order-lines
func (h *RentalHandlers) AddLine(c echo.Context) error {
	id, err := rentalIDParam(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var req models.OrderLineInput
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	order, line, err := h.rentalService.AddLine(c.Request().Context(), id, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, LineResponse{Line: line, Rental: order, Totals: order.Totals()})
}

// UpdateLine handles PUT /rentals/:id/order-lines/:lineId
func (h *RentalHandlers) UpdateLine(c echo.Context) error {
	id, err := rentalIDParam(c)
	if err != nil {
		return common.SendError(c, err)
	}
	lineID, err := common.ValidateUUID(c.Param("lineId"), "lineId")
	if err != nil {
		return common.SendValidationError(c, "lineId", err.Error())
	}

	var req models.OrderLineInput
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	order, line, err := h.rentalService.UpdateLine(c.Request().Context(), id, lineID, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, LineResponse{Line: line, Rental: order, Totals: order.Totals()})
}

// RemoveLine handles DELETE /rentals/:id/order-lines/:lineId
func (h *RentalHandlers) RemoveLine(c echo.Context) error {
	id, err := rentalIDParam(c)
	if err != nil {
		return common.SendError(c, err)
	}
	lineID, err := common.ValidateUUID(c.Param("lineId"), "lineId")
	if err != nil {
		return common.SendValidationError(c, "lineId", err.Error())
	}

	order, err := h.rentalService.RemoveLine(c.Request().Context(), id, lineID)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, LineResponse{Rental: order, Totals: order.Totals()})
}
