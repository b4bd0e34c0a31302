package handler

import (
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

type InfoResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Info GET / - service banner
func (h *HealthHandler) Info(c *fiber.Ctx) error {
	return c.JSON(InfoResponse{
		Status:  "ok",
		Message: "Facegate image classification API is running",
		Version: "0.1.0",
	})
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "ok",
	})
}
