package handlers

import (
	"gudang/internal/models"
	"gudang/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/", h.HandleListProducts)
	// bulk-delete before /:id so the path does not get captured as an ID
	productRoutes.Post("/bulk-delete", h.HandleBulkDeleteProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input models.ProductCreateInput
	if err := c.BodyParser(&input); err != nil {
		return respondBadBody(c, err)
	}

	product, err := h.service.CreateProduct(input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product.Response())
}

// HandleListProducts returns a paginated window of products.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 0)

	products, total, skip, limit, err := h.service.ListProducts(skip, limit)
	if err != nil {
		return respondError(c, err)
	}

	items := make([]models.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, products[i].Response())
	}
	return c.JSON(models.ProductListResponse{
		Items: items,
		Total: total,
		Skip:  skip,
		Limit: limit,
	})
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product.Response())
}

// HandleUpdateProduct applies a partial update to a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var input models.ProductUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return respondBadBody(c, err)
	}

	product, err := h.service.UpdateProduct(c.Params("id"), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product.Response())
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleBulkDeleteProducts deletes every listed product that exists and
// reports the count; unknown IDs are skipped without error.
func (h *ProductHandler) HandleBulkDeleteProducts(c *fiber.Ctx) error {
	var ids []string
	if err := c.BodyParser(&ids); err != nil {
		return respondBadBody(c, err)
	}

	deleted, err := h.service.BulkDeleteProducts(ids)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}
