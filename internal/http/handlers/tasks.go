package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hongminglow/tasks-be/internal/http/respond"
	"github.com/hongminglow/tasks-be/internal/middleware"
	"github.com/hongminglow/tasks-be/internal/models"
	"github.com/hongminglow/tasks-be/internal/models/dto"
	"github.com/hongminglow/tasks-be/internal/storage"
)

// TaskHandler serves CRUD over tasks. Every route requires authentication.
type TaskHandler struct {
	store storage.TaskStore
	deps  Deps
}

// NewTaskHandler constructs the handler.
func NewTaskHandler(store storage.TaskStore, deps Deps) *TaskHandler {
	return &TaskHandler{store: store, deps: deps.withDefaults()}
}

// Register attaches task routes to the mux behind protect.
func (h *TaskHandler) Register(mux *http.ServeMux, protect middleware.Func) {
	mux.Handle("GET /tasks", protect(http.HandlerFunc(h.handleList)))
	mux.Handle("POST /tasks", protect(http.HandlerFunc(h.handleCreate)))
	mux.Handle("GET /tasks/{id}", protect(http.HandlerFunc(h.handleGet)))
	mux.Handle("PATCH /tasks/{id}", protect(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("DELETE /tasks/{id}", protect(http.HandlerFunc(h.handleDelete)))
}

func (h *TaskHandler) handleList(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		respond.Text(w, http.StatusBadRequest, "Incorrect owner id value.")
		return
	}

	tasks, err := h.store.ListTasksByOwner(r.Context(), owner)
	if err != nil {
		h.deps.serverError(w, r, "Error while trying to get tasks", err)
		return
	}
	if len(tasks) == 0 {
		respond.Message(w, http.StatusNotFound, fmt.Sprintf("No tasks found for owner with id %s", owner))
		return
	}
	respond.JSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	task, err := h.store.GetTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Message(w, http.StatusNotFound, fmt.Sprintf("Task with id %s not found", id))
			return
		}
		h.deps.serverError(w, r, "Error while trying to get tasks", err)
		return
	}
	respond.JSON(w, http.StatusOK, task)
}

func (h *TaskHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTaskRequest
	if err := decodeValid(r, &req); err != nil {
		respond.Message(w, http.StatusBadRequest, "All fields are required.")
		return
	}

	created, err := h.store.CreateTask(r.Context(), models.NewTask(req.Owner, req.Title, req.Description))
	if err != nil {
		h.deps.serverError(w, r, "Error while trying to create task", err)
		return
	}
	if created.ID == "" {
		respond.Message(w, http.StatusBadRequest, "Invalid Task data received")
		return
	}
	respond.JSON(w, http.StatusCreated, dto.TaskResponse{Message: "New Task created", Task: created})
}

func (h *TaskHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	var req dto.UpdateTaskRequest
	if err := decodeValid(r, &req); err != nil || id == "" {
		respond.Message(w, http.StatusBadRequest, "All fields are required")
		return
	}

	task, err := h.store.GetTask(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respond.Message(w, http.StatusBadRequest, "Task not found")
		return
	}
	if err != nil {
		h.deps.serverError(w, r, "Error while trying to update task", err)
		return
	}

	task.Owner = req.Owner
	task.Title = req.Title
	task.Description = req.Description
	task.Completed = *req.Completed

	updated, err := h.store.UpdateTask(r.Context(), task)
	if errors.Is(err, storage.ErrNotFound) {
		respond.Message(w, http.StatusBadRequest, "Task not found")
		return
	}
	if err != nil {
		h.deps.serverError(w, r, "Error while trying to update task", err)
		return
	}
	respond.JSON(w, http.StatusOK, dto.TaskResponse{
		Message: fmt.Sprintf("Task with id %s updated", updated.ID),
		Task:    updated,
	})
}

func (h *TaskHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		respond.Message(w, http.StatusBadRequest, "Task ID required")
		return
	}

	task, err := h.store.GetTask(r.Context(), id)
	if err == nil {
		err = h.store.DeleteTask(r.Context(), id)
	}
	if errors.Is(err, storage.ErrNotFound) {
		respond.Message(w, http.StatusBadRequest, "Task not found")
		return
	}
	if err != nil {
		h.deps.serverError(w, r, "Error while trying to delete task", err)
		return
	}
	respond.JSON(w, http.StatusOK, fmt.Sprintf("Task '%s' with ID %s deleted", task.Title, task.ID))
}
