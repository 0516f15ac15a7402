package handlers

import (
	"github.com/gin-gonic/gin"
)

type response struct {
	Data   any      `json:"data"`
	Errors []string `json:"errors"`
}

func writeResponse(c *gin.Context, data any, statusCode int, errors []string) {

	response := response{
		Data:   data,
		Errors: errors,
	}

	c.JSON(statusCode, response)
}
