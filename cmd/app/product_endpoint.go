package main

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/YoshikiFujii/FLcasher/internal/model"
	"github.com/YoshikiFujii/FLcasher/internal/repository"
	"github.com/YoshikiFujii/FLcasher/internal/services"

	"github.com/labstack/echo/v4"
)

// request payloads
type productRequest struct {
	Name        string  `json:"name"`
	Price       int64   `json:"price"`
	ImageURI    *string `json:"imageUri,omitempty"`
	IsAvailable bool    `json:"isAvailable"`
}

// registerProductRoutes mounts product endpoints to the provided group.
//
//	GET    /products      -> list
//	POST   /products      -> create (id assigned by host)
//	PUT    /products/:id  -> update
//	DELETE /products/:id  -> delete
//	GET    /images/:name  -> raw product image bytes
func registerProductRoutes(g *echo.Group, ps *services.ProductService, imageDir string) {
	g.GET("/products", func(c echo.Context) error {
		list, err := ps.List(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, list)
	})

	g.POST("/products", func(c echo.Context) error {
		req := new(productRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}
		p := &model.Product{
			Name:        req.Name,
			Price:       req.Price,
			ImageURI:    req.ImageURI,
			IsAvailable: req.IsAvailable,
		}
		id, err := ps.Create(c.Request().Context(), p)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, map[string]interface{}{"id": id})
	})

	g.PUT("/products/:id", func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
		}
		req := new(productRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
		}
		p := &model.Product{
			ID:          id,
			Name:        req.Name,
			Price:       req.Price,
			ImageURI:    req.ImageURI,
			IsAvailable: req.IsAvailable,
		}
		if err := ps.Update(c.Request().Context(), p); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "product not found"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "updated"})
	})

	g.DELETE("/products/:id", func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
		}
		if err := ps.Delete(c.Request().Context(), id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "product not found"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
	})

	g.GET("/images/:name", func(c echo.Context) error {
		// filepath.Base keeps reads inside the image directory
		name := filepath.Base(c.Param("name"))
		if name == "." || name == string(filepath.Separator) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid name"})
		}
		return c.File(filepath.Join(imageDir, name))
	})
}
