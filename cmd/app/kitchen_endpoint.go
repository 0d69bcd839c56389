package main

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/YoshikiFujii/FLcasher/internal/broadcast"
	"github.com/YoshikiFujii/FLcasher/internal/services"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// All clients live on the cashier's LAN; no origin policy applies.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// registerKitchenRoutes mounts the kitchen display surface.
//
//	GET /kitchen/orders   -> PENDING orders, oldest first
//	GET /kitchen/history  -> all orders, newest first
//	GET /orders/range     -> orders in a timestamp window (?start=&end=)
//	GET /kitchen          -> websocket push subscription (server->client only)
func registerKitchenRoutes(g *echo.Group, os *services.OrderService, hub *broadcast.Hub) {
	g.GET("/kitchen/orders", func(c echo.Context) error {
		orders, err := os.PendingOrders(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, orders)
	})

	g.GET("/kitchen/history", func(c echo.Context) error {
		orders, err := os.History(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, orders)
	})

	g.GET("/orders/range", func(c echo.Context) error {
		start, err := strconv.ParseInt(c.QueryParam("start"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid start"})
		}
		end, err := strconv.ParseInt(c.QueryParam("end"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid end"})
		}
		orders, err := os.OrdersInRange(c.Request().Context(), start, end)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, orders)
	})

	g.GET("/kitchen", func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}
		defer conn.Close()

		sub := hub.Subscribe()
		defer hub.Unsubscribe(sub)

		// The reader's only job is to notice the peer going away.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					hub.Unsubscribe(sub)
					return
				}
			}
		}()

		for {
			select {
			case ev := <-sub.Events():
				if err := conn.WriteJSON(ev); err != nil {
					slog.Warn("kitchen subscriber write failed", "err", err)
					return nil
				}
			case <-sub.Done():
				return nil
			}
		}
	})
}
