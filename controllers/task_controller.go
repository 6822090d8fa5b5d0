package controllers

import (
	"errors"
	"strconv"

	"freight-app/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TaskController struct {
	Tasks *services.TaskService
}

func NewTaskController(tasks *services.TaskService) *TaskController {
	return &TaskController{Tasks: tasks}
}

// GetTaskByID is the poll endpoint for background imports. Reading a task
// never changes it, so clients can poll as often as they like.
func (c *TaskController) GetTaskByID(ctx *fiber.Ctx) error {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid task ID"})
	}

	task, err := c.Tasks.GetTask(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve task"})
	}

	data := fiber.Map{
		"task":     task,
		"progress": task.Progress(),
	}
	if task.Terminal() {
		data["row_errors"] = task.GetRowErrors()
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Task retrieved successfully",
		"data":    data,
	})
}
