package http

import "github.com/labstack/echo/v4"

// Register mounts the deposit API on e. confirm wraps the code-confirmation
// endpoints only.
func Register(e *echo.Echo, health *Handler, d *DepositHandler, confirm ...echo.MiddlewareFunc) {
	e.GET("/health", health.Health)

	g := e.Group("/deposit")
	g.POST("/check", d.Check)
	g.POST("/open", d.Open)
	g.POST("/refill", d.Refill)
	g.POST("/close", d.Close)
	g.GET("/requests/:request_id", d.History)
	g.GET("/:customer_id", d.Summary)

	g.POST("/open/confirm", d.ConfirmOpen, confirm...)
	g.POST("/refill/confirm", d.ConfirmRefill, confirm...)
	g.POST("/close/confirm", d.ConfirmClose, confirm...)
}
