package handlers

import (
	"net/http"
	"time"

	"github.com/hongminglow/tasks-be/internal/http/respond"
)

// HealthBody is the GET /health payload.
type HealthBody struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Storage string `json:"storage"`
}

// HealthHandler reports liveness along with the active storage driver.
type HealthHandler struct {
	startedAt time.Time
	driver    string
	now       func() time.Time
}

func NewHealthHandler(startedAt time.Time, driver string) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, driver: driver, now: time.Now}
}

func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, HealthBody{
		Status:  "ok",
		Uptime:  h.now().Sub(h.startedAt).Truncate(time.Second).String(),
		Storage: h.driver,
	})
}
