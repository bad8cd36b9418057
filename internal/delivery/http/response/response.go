package response

import (
	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key set by middleware.RequestID.
const RequestIDKey = "RequestID"

// ErrorBody is the JSON body of every failed request.
type ErrorBody struct {
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// MessageBody acknowledges an operation that returns no entity.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON sends data as the response body unchanged.
func JSON(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

// Message sends a plain acknowledgment.
func Message(c *gin.Context, code int, message string) {
	c.JSON(code, MessageBody{Message: message})
}

// Error sends an error response. detail carries the underlying error text
// for server-side failures and is omitted when empty.
func Error(c *gin.Context, code int, message string, detail string) {
	reqID, _ := c.Get(RequestIDKey)
	idStr, _ := reqID.(string) // Safe type assertion

	c.JSON(code, ErrorBody{
		Message:   message,
		Error:     detail,
		RequestID: idStr,
	})
}
