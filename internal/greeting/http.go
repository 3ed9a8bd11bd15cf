// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package greeting

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/greeter/internal/platform/middleware"
	requestutil "github.com/taibuivan/greeter/internal/platform/request"
	"github.com/taibuivan/greeter/internal/platform/respond"
	"github.com/taibuivan/greeter/internal/platform/sec"
	"github.com/taibuivan/greeter/pkg/pagination"
)

// Handler implements the greeting endpoints.
type Handler struct {
	service *Service
	guestID int64
}

// NewHandler constructs a new [Handler]. Anonymous greetings are attributed to guestID.
func NewHandler(service *Service, guestID int64) *Handler {
	return &Handler{service: service, guestID: guestID}
}

// Routes returns a [chi.Router] configured with the greeting endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public
	router.Get("/hello", handler.hello)

	// Signed-in users only
	router.Route("/me/greetings", func(mine chi.Router) {
		mine.Use(middleware.RequireRole(sec.RoleUser))

		mine.Get("/", handler.count)
		mine.Get("/history", handler.history)
	})

	return router
}

// # Response Payloads

type helloResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type countResponse struct {
	Total int `json:"total"`
}

type historyItem struct {
	Message     string      `json:"message"`
	RequestType RequestType `json:"requestType"`
	Timestamp   string      `json:"timestamp"`
}

/*
GET /api/hello.

Description: Records a greeting and returns its message.

Request:
  - name: string (query, default "World")

Response:
  - 200: helloResponse
  - 400: Name too long
*/
func (handler *Handler) hello(writer http.ResponseWriter, request *http.Request) {
	userID := handler.guestID
	if claims := requestutil.Claims(request); claims != nil {
		userID = claims.UserID
	}

	greeting, err := handler.service.Greet(request.Context(), request.URL.Query().Get("name"), RequestTypeAPI, userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, helloResponse{
		Message:   greeting.Message(),
		Timestamp: greeting.CreatedAt.Format(time.RFC3339Nano),
	})
}

/*
GET /api/me/greetings.

Description: Counts the greetings of the signed-in user.

Response:
  - 200: countResponse
  - 401: Anonymous caller
*/
func (handler *Handler) count(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	total, err := handler.service.CountForUser(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, countResponse{Total: total})
}

/*
GET /api/me/greetings/history.

Description: Lists the greetings of the signed-in user, newest first.

Request:
  - page: int
  - limit: int

Response:
  - 200: []historyItem with pagination meta
  - 401: Anonymous caller
*/
func (handler *Handler) history(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	greetings, total, err := handler.service.HistoryForUser(request.Context(), claims.UserID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	items := make([]historyItem, 0, len(greetings))
	for _, greeting := range greetings {
		items = append(items, historyItem{
			Message:     greeting.Message(),
			RequestType: greeting.RequestType,
			Timestamp:   greeting.CreatedAt.Format(time.RFC3339Nano),
		})
	}

	respond.Paginated(writer, items, pagination.NewMeta(params, total))
}
