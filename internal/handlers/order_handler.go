package handlers

import (
	"gudang/internal/models"
	"gudang/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Post("/:id/items", h.HandleAddItems)
	orderRoutes.Delete("/:id", h.HandleCancelOrder)
}

// HandleCreateOrder creates a new order, reserving stock for every item.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var input models.OrderCreateInput
	if err := c.BodyParser(&input); err != nil {
		return respondBadBody(c, err)
	}

	order, err := h.service.CreateOrder(input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order.Response())
}

// HandleListOrders returns a paginated window of orders, newest first.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 0)

	orders, err := h.service.ListOrders(skip, limit)
	if err != nil {
		return respondError(c, err)
	}

	responses := make([]models.OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, orders[i].Response())
	}
	return c.JSON(responses)
}

// HandleGetOrder retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order.Response())
}

// HandleUpdateOrderStatus applies an order status transition.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var input models.OrderStatusUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return respondBadBody(c, err)
	}

	order, err := h.service.UpdateOrderStatus(c.Params("id"), input.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order.Response())
}

// HandleAddItems appends new items to a Pending order.
func (h *OrderHandler) HandleAddItems(c *fiber.Ctx) error {
	var input models.OrderCreateInput
	if err := c.BodyParser(&input); err != nil {
		return respondBadBody(c, err)
	}

	order, err := h.service.AddItems(c.Params("id"), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order.Response())
}

// HandleCancelOrder cancels an order, releasing its reserved stock.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order.Response())
}
