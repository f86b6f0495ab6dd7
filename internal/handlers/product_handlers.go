package handlers

import (
	"net/http"
	"strconv"

	"rentalhub/internal/common"
	"rentalhub/internal/models"
	"rentalhub/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ProductHandlers handles HTTP requests for the rental catalog
type ProductHandlers struct {
	productService services.ProductService
}

// NewProductHandlers creates a new product handlers instance
func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

func (h *ProductHandlers) Register(g *echo.Group) {
	g.GET("/products", h.ListProducts)
	g.POST("/products", h.CreateProduct)
	g.GET("/products/:id", h.GetProduct)
	g.PUT("/products/:id", h.UpdateProduct)
	g.DELETE("/products/:id", h.DeleteProduct)
}

type productRequest struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	RentalUnit  string          `json:"rental_unit"`
	RentalPrice decimal.Decimal `json:"rental_price"`
	Tax         decimal.Decimal `json:"tax"`
}

func (r *productRequest) toModel() *models.Product {
	return &models.Product{
		Name:        r.Name,
		Description: r.Description,
		RentalUnit:  r.RentalUnit,
		RentalPrice: r.RentalPrice,
		Tax:         r.Tax,
	}
}

// ListProducts handles GET /products?search=&limit=&offset=
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	limit, offset := 0, 0
	if l := c.QueryParam("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil {
			return common.SendValidationError(c, "limit", "must be an integer")
		}
		limit = v
	}
	if o := c.QueryParam("offset"); o != "" {
		v, err := strconv.Atoi(o)
		if err != nil {
			return common.SendValidationError(c, "offset", "must be an integer")
		}
		offset = v
	}

	products, err := h.productService.List(c.Request().Context(), c.QueryParam("search"), limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"products": products})
}

// CreateProduct handles POST /products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	product := req.toModel()
	if err := h.productService.Create(c.Request().Context(), product); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	product, err := h.productService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct handles PUT /products/:id. The body replaces every
// editable field.
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "Invalid request format")
	}

	product := req.toModel()
	product.ID = id
	if err := h.productService.Update(c.Request().Context(), product); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id. Lines that referenced the
// product keep their copied name and price.
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.productService.Delete(c.Request().Context(), id); err != nil {
		return common.SendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
