package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/example/device-loans/internal/command"
	"github.com/example/device-loans/internal/domain/device"
	"github.com/example/device-loans/internal/domain/item"
	"github.com/example/device-loans/internal/infrastructure/store"
	"github.com/example/device-loans/internal/query"
)

// Handlers serves the device and inventory-item HTTP endpoints.
type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
	}
}

// Device handlers

func (h *Handlers) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateDevice
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	created, err := h.cmdHandler.CreateDevice(r.Context(), cmd)
	if err != nil {
		h.respondCommandError(w, err)
		return
	}

	respondData(w, http.StatusCreated, created)
}

func (h *Handlers) GetDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.queryHandler.ListDevices(r.Context())
	if err != nil {
		h.respondCommandError(w, err)
		return
	}
	if devices == nil {
		devices = []device.Device{}
	}
	respondData(w, http.StatusOK, devices)
}

func (h *Handlers) GetDevice(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/devices/")
	d, err := h.queryHandler.GetDevice(r.Context(), id)
	if err != nil {
		h.respondCommandError(w, err)
		return
	}
	respondData(w, http.StatusOK, d)
}

func (h *Handlers) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/devices/")

	var cmd command.UpdateDevice
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	cmd.ID = id

	updated, err := h.cmdHandler.UpdateDevice(r.Context(), cmd)
	if err != nil {
		h.respondCommandError(w, err)
		return
	}

	respondData(w, http.StatusOK, updated)
}

func (h *Handlers) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/devices/")

	if err := h.cmdHandler.DeleteDevice(r.Context(), command.DeleteDevice{ID: id}); err != nil {
		h.respondCommandError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Inventory item handlers

func (h *Handlers) CreateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateInventoryItem
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	created, err := h.cmdHandler.CreateInventoryItem(r.Context(), cmd)
	if err != nil {
		h.respondCommandError(w, err)
		return
	}

	respondData(w, http.StatusCreated, created)
}

func (h *Handlers) GetInventoryItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.queryHandler.ListInventoryItems(r.Context())
	if err != nil {
		h.respondCommandError(w, err)
		return
	}
	if items == nil {
		items = []item.InventoryItem{}
	}
	respondData(w, http.StatusOK, items)
}

func (h *Handlers) GetInventoryItem(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/items/")
	it, err := h.queryHandler.GetInventoryItem(r.Context(), id)
	if err != nil {
		h.respondCommandError(w, err)
		return
	}
	respondData(w, http.StatusOK, it)
}

// Health

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	status := http.StatusOK
	storageStatus := "ok"

	// Lightweight probe to confirm the device store is reachable.
	if _, err := h.queryHandler.ListDevices(r.Context()); err != nil {
		log.Printf("[API] Health check failed to reach device store: %v", err)
		status = http.StatusServiceUnavailable
		storageStatus = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     storageStatus,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"durationMs": time.Since(started).Milliseconds(),
	})
}

// Error mapping

func (h *Handlers) respondCommandError(w http.ResponseWriter, err error) {
	var deviceValidation *device.ValidationError
	var itemValidation *item.ValidationError

	switch {
	case errors.As(err, &deviceValidation):
		respondError(w, http.StatusBadRequest, "invalid_"+deviceValidation.Field, deviceValidation.Error())
	case errors.As(err, &itemValidation):
		respondError(w, http.StatusBadRequest, "invalid_"+itemValidation.Field, itemValidation.Error())
	case errors.Is(err, command.ErrDeviceExists):
		respondError(w, http.StatusConflict, "device_exists", "a device with this id already exists")
	case errors.Is(err, device.ErrNotFound):
		respondError(w, http.StatusNotFound, "device_not_found", "device not found")
	case errors.Is(err, item.ErrNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", "inventory item not found")
	case errors.Is(err, device.ErrNegativeCount):
		respondError(w, http.StatusConflict, "would_go_negative", "device count cannot go negative")
	case errors.Is(err, store.ErrVersionConflict):
		respondError(w, http.StatusConflict, "conflict", "the record was modified concurrently, retry")
	default:
		log.Printf("[API] Unhandled error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
	}
}

// Helpers

func respondData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func extractPathParam(path, prefix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(path, prefix), "/")
}
