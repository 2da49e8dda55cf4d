package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"supermarket-dashboard/internal/errors"
	"supermarket-dashboard/internal/models"
	"supermarket-dashboard/internal/observability"
	"supermarket-dashboard/internal/services"
	"supermarket-dashboard/internal/ui/templates"
)

// ssePresenter turns presented figures into one signals patch plus one
// element patch per chart.
type ssePresenter struct {
	ctx      context.Context
	signals  map[string]any
	elements []string
	err      error
}

func newSSEPresenter(ctx context.Context) *ssePresenter {
	return &ssePresenter{ctx: ctx, signals: make(map[string]any)}
}

func (p *ssePresenter) DisplayScalar(label string, value float64, format string) {
	p.signals[templates.SignalName(label)] = services.FormatValue(format, value)
}

func (p *ssePresenter) DisplaySeries(label string, pairs []models.GroupTotal) {
	chart := templates.ChartFor(label, pairs)
	if chart == nil || p.err != nil {
		return
	}

	var buf strings.Builder
	if err := chart.Render(p.ctx, &buf); err != nil {
		p.err = fmt.Errorf("render %s: %w", label, err)
		return
	}
	p.elements = append(p.elements, buf.String())
}

func (p *ssePresenter) flush(sse *datastar.ServerSentEventGenerator) error {
	if p.err != nil {
		return p.err
	}

	if len(p.signals) > 0 {
		payload, err := json.Marshal(p.signals)
		if err != nil {
			return fmt.Errorf("marshal signals: %w", err)
		}
		if err := sse.PatchSignals(payload); err != nil {
			return fmt.Errorf("patch signals: %w", err)
		}
	}

	for _, html := range p.elements {
		if err := sse.PatchElements(html); err != nil {
			return fmt.Errorf("patch elements: %w", err)
		}
	}
	return nil
}

type SSEHandlers struct {
	controller *services.Controller
	logger     *slog.Logger
}

func NewSSEHandlers(controller *services.Controller, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		controller: controller,
		logger:     logger,
	}
}

type selectionSignals struct {
	Month string `json:"month"`
}

// HandleSelectMonth applies the month signal sent by the selector and
// patches the three monthly indicators.
func (h *SSEHandlers) HandleSelectMonth(w http.ResponseWriter, r *http.Request) {
	var signals selectionSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		errors.WriteError(w, h.logger, errors.Wrap(err, errors.CodeBadRequest, "Invalid signals"),
			observability.GetRequestID(r.Context()))
		return
	}

	month := models.Month(strings.TrimSpace(signals.Month))
	if month == models.AllMonths {
		errors.WriteError(w, h.logger, errors.BadRequest("month signal is required"),
			observability.GetRequestID(r.Context()))
		return
	}
	if !month.IsKnown() {
		observability.RequestLogger(r.Context(), h.logger).Warn("unknown month selected", "month", signals.Month)
	}

	sse := datastar.NewSSE(w, r)
	p := newSSEPresenter(r.Context())
	h.controller.Select(month, p)

	if err := p.flush(sse); err != nil {
		observability.RequestLogger(r.Context(), h.logger).Error("patch selection", "error", err)
	}
}

// HandleRefreshAll re-sends the current selection and every chart.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	p := newSSEPresenter(r.Context())
	services.PresentOverview(p, h.controller.Analytics().Overview())
	snapshot := h.controller.Present(p)
	p.signals["month"] = string(snapshot.Month)

	if err := p.flush(sse); err != nil {
		observability.RequestLogger(r.Context(), h.logger).Error("patch refresh", "error", err)
	}
}
