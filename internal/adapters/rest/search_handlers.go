package rest

import (
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/core/domain"
	"easystay-service/internal/core/port"
	"easystay-service/internal/core/port/usecases_port"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type SearchHandler struct {
	searchUC    usecases_port.SearchPropertiesUseCase
	getBySlugUC usecases_port.GetPropertyBySlugUseCase
}

func NewSearchHandler(searchUC usecases_port.SearchPropertiesUseCase, getBySlugUC usecases_port.GetPropertyBySlugUseCase) *SearchHandler {
	return &SearchHandler{searchUC: searchUC, getBySlugUC: getBySlugUC}
}

// parseSearchQuery: кривые параметры не дают 400, соответствующий фильтр просто не применяется
func parseSearchQuery(r *http.Request) domain.SearchQuery {
	values := r.URL.Query()

	query := domain.SearchQuery{
		Text:     values.Get("q"),
		Guests:   domain.ParseGuests(values.Get("guests")),
		CheckIn:  values.Get("checkIn"),
		CheckOut: values.Get("checkOut"),
	}
	if bounds, ok := domain.ParseBounds(values.Get("bounds")); ok {
		query.Bounds = bounds
	}
	return query
}

// SearchProperties - GET /api/properties
func (h *SearchHandler) SearchProperties(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())
	handlerLogger := logger.WithFields(port.Fields{"handler": "SearchProperties"})

	query := parseSearchQuery(r)

	result, err := h.searchUC.Execute(r.Context(), query)
	if err != nil {
		handlerLogger.Error("Search use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to search properties")
		return
	}

	RespondWithJSON(w, http.StatusOK, SearchResponseDTO{
		Properties: toPropertyDTOs(result.Properties),
		Total:      result.Total,
	})
}

// GetProperty - GET /api/properties/{slug}
func (h *SearchHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())
	slug := chi.URLParam(r, "slug")
	handlerLogger := logger.WithFields(port.Fields{"handler": "GetProperty", "slug": slug})

	property, err := h.getBySlugUC.Execute(r.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrPropertyNotFound) {
			WriteJSONError(w, http.StatusNotFound, "Property not found")
			return
		}
		handlerLogger.Error("Get property use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to load property")
		return
	}

	RespondWithJSON(w, http.StatusOK, PropertyResponseDTO{Property: toPropertyDTO(*property)})
}
