package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tsinghua-fib-lab/greensplit/task"
)

// Handler HTTP处理器
type Handler struct {
	task *task.Context
}

func NewHandler(t *task.Context) *Handler {
	return &Handler{task: t}
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":       "ok",
		"service":      AppName,
		"version":      Version,
		"intersection": h.task.RuntimeConfig().C.Intersection,
	})
}

// Optimize 执行一次绿信比优化
// 说明：请求体为空时使用配置中的输入与参数
func (h *Handler) Optimize(c *fiber.Ctx) error {
	var req task.Request
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	res, err := h.task.Handle(c.UserContext(), req)
	if err != nil {
		return fiber.NewError(Status(err), err.Error())
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    res,
	})
}
