package handler

import (
	"log/slog"
	"net/http"

	"encore/internal/delivery/http/response"
	"encore/internal/domain/entity"
	"encore/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// OrderHandler holds dependencies for music order handlers.
type OrderHandler struct {
	orderUC  usecase.OrderUsecase
	promptUC usecase.PromptUsecase
	logger   *slog.Logger
}

// NewOrderHandler is the constructor for OrderHandler, injected by Fx.
func NewOrderHandler(orderUC usecase.OrderUsecase, promptUC usecase.PromptUsecase, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderUC:  orderUC,
		promptUC: promptUC,
		logger:   logger,
	}
}

// orderCollectionResponse is the wire shape of an order collection snapshot.
type orderCollectionResponse struct {
	State  string          `json:"state"`
	Orders []*entity.Order `json:"orders"`
	Error  string          `json:"error,omitempty"`
}

// CreateOrder handles the order submission request.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	// An empty body leaves input nil: the binder never allocates it.
	var input *usecase.OrderDraftInput
	if err := c.Bind(&input); err != nil || input == nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid order input")
	}

	output, err := h.orderUC.CreateOrder(c.Request().Context(), userID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output.Order, "Order created successfully")
}

// ListOrders handles the order collection request. The refresh query
// parameter marks the collection view becoming visible again, which
// forces a refetch.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	// Any non-empty refresh value (e.g. "visibility", "true") marks the
	// client's collection view as newly visible.
	input := &usecase.ListOrdersInput{
		Refresh: c.QueryParam("refresh") != "",
	}

	output, err := h.orderUC.ListOrders(c.Request().Context(), userID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := orderCollectionResponse{
		State:  string(output.Snapshot.State),
		Orders: output.Snapshot.Orders,
	}
	if output.Snapshot.Err != nil {
		resp.Error = output.Snapshot.Err.Error()
	}

	return response.Success(c, http.StatusOK, resp, "Orders retrieved successfully")
}

// GetOrder handles the single order detail request.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	orderID, err := parseOrderID(c)
	if err != nil {
		return err
	}

	output, err := h.orderUC.GetOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output.Order, "Order retrieved successfully")
}

// UpdateOrder handles the order edit request.
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	orderID, err := parseOrderID(c)
	if err != nil {
		return err
	}

	var input *usecase.OrderDraftInput
	if err := c.Bind(&input); err != nil || input == nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid order input")
	}

	output, err := h.orderUC.UpdateOrder(c.Request().Context(), userID, orderID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output.Order, "Order updated successfully")
}

// DeleteOrder handles the order deletion request. The confirm query
// parameter must be "true" or the deletion is rejected.
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	orderID, err := parseOrderID(c)
	if err != nil {
		return err
	}

	input := &usecase.DeleteOrderInput{
		Confirm: c.QueryParam("confirm") == "true",
	}

	if err := h.orderUC.DeleteOrder(c.Request().Context(), userID, orderID, input); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Order deleted"}, "Order deleted successfully")
}

// GetOrderQR returns a PNG QR code encoding the order id.
func (h *OrderHandler) GetOrderQR(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	orderID, err := parseOrderID(c)
	if err != nil {
		return err
	}

	png, err := h.orderUC.GetOrderQR(c.Request().Context(), userID, orderID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// GeneratePrompt returns a generated music-production prompt for the order.
func (h *OrderHandler) GeneratePrompt(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	orderID, err := parseOrderID(c)
	if err != nil {
		return err
	}

	output, err := h.promptUC.GeneratePrompt(c.Request().Context(), userID, orderID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Prompt generated successfully")
}

// parseOrderID extracts and validates the :id path parameter.
func parseOrderID(c echo.Context) (uuid.UUID, error) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid order ID")
	}

	return orderID, nil
}
