package main

import (
	"net/http"
	"strconv"

	"github.com/YoshikiFujii/FLcasher/internal/services"

	"github.com/labstack/echo/v4"
)

// registerSalesRoutes mounts the register reconciliation query.
//
//	GET /sales/total?since=<epoch_ms> -> summed totalAmount as plain text,
//	excluding CANCELLED orders
func registerSalesRoutes(g *echo.Group, os *services.OrderService) {
	g.GET("/sales/total", func(c echo.Context) error {
		since := int64(0)
		if raw := c.QueryParam("since"); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid since"})
			}
			since = v
		}
		total, err := os.TotalSince(c.Request().Context(), since)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.String(http.StatusOK, strconv.FormatInt(total, 10))
	})
}
