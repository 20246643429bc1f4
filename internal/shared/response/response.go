package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Envelope is the JSON body shape of every API response.
type Envelope struct {
	Status  string      `json:"status"`
	Results *int        `json:"results,omitempty"`
	Token   string      `json:"token,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`

	// development only
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Data wraps a single entity: {status, data: {data: entity}}.
func Data(c *gin.Context, statusCode int, entity interface{}) {
	c.JSON(statusCode, Envelope{
		Status: StatusSuccess,
		Data:   gin.H{"data": entity},
	})
}

// List wraps a collection with its count: {status, results, data: {data: items}}.
func List(c *gin.Context, items interface{}, count int) {
	c.JSON(http.StatusOK, Envelope{
		Status:  StatusSuccess,
		Results: &count,
		Data:    gin.H{"data": items},
	})
}

// Named wraps a payload under a custom key, e.g. {data: {stats: [...]}}.
func Named(c *gin.Context, statusCode int, key string, payload interface{}) {
	c.JSON(statusCode, Envelope{
		Status: StatusSuccess,
		Data:   gin.H{key: payload},
	})
}

// WithToken is the auth response: {status, token, data: {user}}.
func WithToken(c *gin.Context, statusCode int, token string, user interface{}) {
	c.JSON(statusCode, Envelope{
		Status: StatusSuccess,
		Token:  token,
		Data:   gin.H{"user": user},
	})
}

func Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Envelope{Status: StatusSuccess, Message: message})
}

func OK(c *gin.Context) {
	c.JSON(http.StatusOK, Envelope{Status: StatusSuccess})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Fail hands err to the error middleware and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
