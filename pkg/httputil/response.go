package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response wraps all API responses
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Kind    apperrors.Kind `json:"kind"`
	Message string         `json:"message"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	Total     int `json:"total"`
	TotalPage int `json:"total_pages"`
}

// PaginatedResponse wraps paginated data
type PaginatedResponse struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Status: StatusSuccess, Data: data})
}

// RespondCreated sends a 201 success response
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Status: StatusSuccess, Data: data})
}

// RespondWithError sends an error response. Non-application errors are
// reported as internal and their detail is only logged.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	status := appErr.StatusCode()

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}

	c.AbortWithStatusJSON(status, Response{
		Status: StatusError,
		Error: &Error{
			Kind:    appErr.Kind,
			Message: appErr.Message,
		},
	})
}

// RespondWithPagination sends a paginated response
func RespondWithPagination(c *gin.Context, items interface{}, page, pageSize, total int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	c.JSON(http.StatusOK, Response{
		Status: StatusSuccess,
		Data: PaginatedResponse{
			Items: items,
			Pagination: Pagination{
				Page:      page,
				PageSize:  pageSize,
				Total:     total,
				TotalPage: totalPages,
			},
		},
	})
}
