package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ArslanJaveed/idid/attendance"
	"github.com/ArslanJaveed/idid/middlewares"
	"github.com/ArslanJaveed/idid/models"
)

type TaskHandler struct {
	Engine *attendance.Engine
}

func NewTaskHandler(en *attendance.Engine) *TaskHandler {
	return &TaskHandler{Engine: en}
}

type addTaskReq struct {
	Description string `json:"description" validate:"required,max=500"`
}

// POST /employee/tasks/add
func (h *TaskHandler) Add(c echo.Context) error {
	employee := middlewares.Principal(c).Employee

	var req addTaskReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.Engine.AddTask(employee, req.Description)
	if err != nil {
		if errors.Is(err, attendance.ErrNotCheckedIn) {
			return httpError(http.StatusBadRequest, "NOT_CHECKED_IN")
		}
		return httpError(http.StatusInternalServerError, "TASK_CREATE_FAILED")
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Task added.",
		"task":    task,
	})
}

type updateTaskStatusReq struct {
	Status models.TaskStatus `json:"status" validate:"required,oneof=pending completed incomplete"`
}

// PUT /employee/tasks/:id/status
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	employee := middlewares.Principal(c).Employee

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updateTaskStatusReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.Engine.UpdateTaskStatus(employee, id, req.Status)
	if err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			return httpError(http.StatusNotFound, "TASK_NOT_FOUND")
		}
		return httpError(http.StatusInternalServerError, "TASK_UPDATE_FAILED")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Task status updated.",
		"task":    task,
	})
}

// GET /employee/tasks/today
func (h *TaskHandler) Today(c echo.Context) error {
	employee := middlewares.Principal(c).Employee

	tasks, err := h.Engine.TodayTasks(employee)
	if err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			return httpError(http.StatusNotFound, "NO_ATTENDANCE_TODAY")
		}
		return httpError(http.StatusInternalServerError, "TASK_LIST_FAILED")
	}
	return c.JSON(http.StatusOK, map[string]any{"tasks": tasks})
}

// GET /employee/tasks/history/:attendance_id
func (h *TaskHandler) Historical(c echo.Context) error {
	employee := middlewares.Principal(c).Employee

	id, err := pathID(c, "attendance_id")
	if err != nil {
		return err
	}

	tasks, err := h.Engine.TasksForRecord(employee, id)
	if err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			return httpError(http.StatusNotFound, "ATTENDANCE_NOT_FOUND")
		}
		return httpError(http.StatusInternalServerError, "TASK_LIST_FAILED")
	}
	return c.JSON(http.StatusOK, map[string]any{"tasks": tasks})
}
