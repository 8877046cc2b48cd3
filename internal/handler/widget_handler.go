package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fakhrymubarak/weather-stripes/internal/config"
	"github.com/fakhrymubarak/weather-stripes/internal/model"
	"github.com/fakhrymubarak/weather-stripes/internal/repository"
	"github.com/fakhrymubarak/weather-stripes/internal/service"
	"github.com/fakhrymubarak/weather-stripes/internal/widget"
)

type WidgetHandler struct {
	StripeService service.StripeServiceInterface
	DefaultCity   string
}

func NewWidgetHandler(svc ...service.StripeServiceInterface) *WidgetHandler {
	var stripeService service.StripeServiceInterface
	if len(svc) > 0 && svc[0] != nil {
		stripeService = svc[0]
	} else {
		stripeService = service.NewStripeService()
	}
	return &WidgetHandler{
		StripeService: stripeService,
		DefaultCity:   config.GetDefaultCity(),
	}
}

func (h *WidgetHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		config.GetLogger().Errorw("could not encode json", "error", err)
	}
}

func (h *WidgetHandler) writeError(w http.ResponseWriter, statusCode int, errMsg string) {
	h.writeJSONResponse(w, statusCode, model.ErrorResponse(errMsg, "Error"))
}

// writeWidget renders wd into a buffer first so an encoding failure can
// still produce a clean 500.
func (h *WidgetHandler) writeWidget(w http.ResponseWriter, statusCode int, wd *widget.Widget, format widget.Format) {
	var buf bytes.Buffer
	if err := widget.Encode(&buf, wd, format); err != nil {
		config.GetLogger().Errorw("could not render widget", "format", format, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to render widget")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}

// HandleWidget serves GET /widget?city=&kind=&format=.
func (h *WidgetHandler) HandleWidget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	q := r.URL.Query()
	kind, ok := model.ParseKind(q.Get("kind"))
	if !ok {
		h.writeError(w, http.StatusBadRequest, "Invalid 'kind' query parameter: use temperature or cloud")
		return
	}
	format, ok := widget.ParseFormat(q.Get("format"), widget.FormatSVG)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "Invalid 'format' query parameter: use svg, png, json or text")
		return
	}
	city := q.Get("city")
	if city == "" {
		city = h.DefaultCity
	}

	series, err := h.StripeService.GetSeries(r.Context(), city, kind)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, repository.ErrCityNotFound) {
			status = http.StatusNotFound
		}
		config.GetLogger().Errorw("Failed to build widget", "city", city, "kind", kind, "error", err)
		if format == widget.FormatJSON {
			h.writeError(w, status, err.Error())
			return
		}
		h.writeWidget(w, status, widget.Error(err.Error()), format)
		return
	}

	wd := widget.Build(series)
	if format == widget.FormatJSON {
		w.Header().Set("Cache-Control", "no-store")
		h.writeJSONResponse(w, http.StatusOK, model.Response{
			Data: widgetDocument{
				Series: series,
				Widget: wd,
			},
			Message: "Success",
		})
		return
	}
	h.writeWidget(w, http.StatusOK, wd, format)
}

// HandleHealth serves GET /healthz.
func (h *WidgetHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type widgetDocument struct {
	Series *model.Series  `json:"series"`
	Widget *widget.Widget `json:"widget"`
}
