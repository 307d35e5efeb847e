// HTTP服务：提供绿信比优化接口、connect服务与Prometheus指标
package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tsinghua-fib-lab/greensplit/entity"
	"github.com/tsinghua-fib-lab/greensplit/task"
	"github.com/tsinghua-fib-lab/greensplit/utils/metrics"
)

const (
	AppName = "greensplit"
	Version = "1.0.0"
)

// New 创建fiber应用并注册全部路由
// 参数：t-优化任务上下文，m-指标集合（可以为nil）
func New(t *task.Context, m *metrics.Collector) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               AppName,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Connect-Protocol-Version",
	}))
	SetupRoutes(app, t, m)
	return app
}

// SetupRoutes 注册路由
func SetupRoutes(app *fiber.App, t *task.Context, m *metrics.Collector) {
	h := NewHandler(t)

	app.Get("/health", h.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	api := app.Group("/api/v1")
	{
		api.Post("/optimize", h.Optimize)
	}

	_, rpc := t.NewSignalPlanServiceHandler()
	app.Post(task.OptimizeProcedure, adaptor.HTTPHandler(rpc))
}

// Status 错误对应的HTTP状态码
func Status(err error) int {
	switch {
	case errors.Is(err, entity.ErrConfiguration):
		return fiber.StatusBadRequest
	case errors.Is(err, entity.ErrInfeasible):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrSolverTimeout):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}
	if code >= fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
