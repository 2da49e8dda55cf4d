package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"supermarket-dashboard/internal/errors"
	"supermarket-dashboard/internal/export"
	"supermarket-dashboard/internal/models"
	"supermarket-dashboard/internal/observability"
	"supermarket-dashboard/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	controller *services.Controller
	logger     *slog.Logger
}

func NewAPIHandlers(controller *services.Controller, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		controller: controller,
		logger:     logger,
	}
}

// monthParam reads ?month=. Absent or "all" means no filter. Any other
// value is passed through, so an unknown month gives an all-zero snapshot.
func monthParam(r *http.Request) models.Month {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" || strings.EqualFold(v, "all") {
		return models.AllMonths
	}
	return models.Month(v)
}

func (h *APIHandlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	data := h.controller.Analytics().Snapshot(monthParam(r))
	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	data := h.controller.Analytics().Overview()
	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleProductLineRevenue(w http.ResponseWriter, r *http.Request) {
	data := h.controller.Analytics().Overview().RevenueByProductLine
	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleProductLineQuantity(w http.ResponseWriter, r *http.Request) {
	data := h.controller.Analytics().Overview().QuantityByProductLine
	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleDemographics(w http.ResponseWriter, r *http.Request) {
	o := h.controller.Analytics().Overview()
	data := map[string][]models.GroupTotal{
		"customer_types":  o.CustomerTypes,
		"payment_methods": o.PaymentMethods,
		"genders":         o.Genders,
	}
	errors.WriteSuccessWithHeaders(w, data, cacheHeaders)
}

func (h *APIHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	month := monthParam(r)
	analytics := h.controller.Analytics()

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, analytics.Snapshot(month), analytics.Overview()); err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Failed to build workbook"),
			observability.GetRequestID(r.Context()))
		return
	}

	name := "all"
	if month.IsKnown() {
		name = strings.ToLower(string(month))
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="sales-%s.xlsx"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		observability.RequestLogger(r.Context(), h.logger).Warn("write workbook", "error", err)
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.controller.Analytics().Stats()
	stats["selected_month"] = string(h.controller.Selected())

	errors.WriteSuccess(w, stats)
}
