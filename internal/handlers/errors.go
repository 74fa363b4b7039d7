package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the "error" field of failed responses
const (
	CodeMissingRegion     = "MISSING_OR_INVALID_REGION"
	CodeMissingLocation   = "MISSING_OR_INVALID_LOCATION"
	CodeInvalidCriteria   = "INVALID_CRITERIA_VALUE"
	CodeDuplicateCriteria = "DUPLICATE_CRITERIA"
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeNotFound          = "NOT_FOUND"
	CodeDataSource        = "DATA_SOURCE_ERROR"
	CodeInternal          = "INTERNAL_SERVER_ERROR"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: message})
}

func badRequest(c *gin.Context, code, message string) {
	abortWithError(c, http.StatusBadRequest, code, message)
}
