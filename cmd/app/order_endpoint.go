package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/YoshikiFujii/FLcasher/internal/model"
	"github.com/YoshikiFujii/FLcasher/internal/repository"
	"github.com/YoshikiFujii/FLcasher/internal/services"

	"github.com/labstack/echo/v4"
)

type orderItemRequest struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int64  `json:"quantity"`
	PriceAtSale int64  `json:"priceAtSale"`
}

type orderRequest struct {
	Timestamp   int64              `json:"timestamp"`
	TotalAmount int64              `json:"totalAmount"`
	Status      string             `json:"status"`
	Items       []orderItemRequest `json:"items"`
	RandomID    *string            `json:"randomId,omitempty"`
	IsTakeout   bool               `json:"isTakeout,omitempty"`
}

// registerOrderRoutes mounts order submission and status transitions.
//
//	POST   /order               -> submit, responds {id, displayId}
//	POST   /order/:id/complete  -> PENDING -> COMPLETED (idempotent)
//	POST   /order/:id/revert    -> COMPLETED -> PENDING (idempotent)
//	DELETE /order/:id           -> delete order and its items
//	POST   /reset-order-number  -> zero the display-id sequence
func registerOrderRoutes(g *echo.Group, os *services.OrderService) {
	g.POST("/order", func(c echo.Context) error {
		req := new(orderRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}

		order := &model.Order{
			Timestamp:   req.Timestamp,
			TotalAmount: req.TotalAmount,
			Status:      req.Status,
			RandomID:    req.RandomID,
			IsTakeout:   req.IsTakeout,
		}
		items := make([]model.OrderItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, model.OrderItem{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				PriceAtSale: it.PriceAtSale,
			})
		}

		id, displayID, err := os.Submit(c.Request().Context(), order, items)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, map[string]interface{}{
			"id":        id,
			"displayId": displayID,
		})
	})

	g.POST("/order/:id/complete", func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
		}
		if err := os.Complete(c.Request().Context(), id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "order not found"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "completed"})
	})

	g.POST("/order/:id/revert", func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
		}
		if err := os.Revert(c.Request().Context(), id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "order not found"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "reverted"})
	})

	g.DELETE("/order/:id", func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
		}
		if err := os.DeleteOrder(c.Request().Context(), id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "order not found"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
	})

	g.POST("/reset-order-number", func(c echo.Context) error {
		os.ResetSequence()
		return c.JSON(http.StatusOK, map[string]string{"message": "order number reset"})
	})
}
