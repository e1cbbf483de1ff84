package errors

import "net/http"

var (
	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidPricingTiers = New(
		"INVALID_PRICING_TIERS",
		"Invalid pricing tiers",
		http.StatusUnprocessableEntity,
	)

	ErrSessionNotFound = New(
		"SESSION_NOT_FOUND",
		"Drawing session not found",
		http.StatusNotFound,
	)

	ErrPolygonNotFound = New(
		"POLYGON_NOT_FOUND",
		"Polygon not found",
		http.StatusNotFound,
	)

	ErrVertexOutOfRange = New(
		"VERTEX_OUT_OF_RANGE",
		"Vertex index out of range",
		http.StatusBadRequest,
	)

	ErrTooFewVertices = New(
		"TOO_FEW_VERTICES",
		"Polygon must keep at least 3 vertices",
		http.StatusUnprocessableEntity,
	)

	ErrQuoteNotFound = New(
		"QUOTE_NOT_FOUND",
		"Quote not found",
		http.StatusNotFound,
	)

	ErrInvalidStatusTransition = New(
		"INVALID_STATUS_TRANSITION",
		"Quote status cannot be changed",
		http.StatusConflict,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
