package handlers

import (
	"github.com/gin-gonic/gin"
)

// Fail writes the error envelope every failure shares: a status code and
// {success:false, message}. Internal detail never reaches the body.
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"message": message,
	})
}

// OK writes a success envelope, merging extra fields at the top level the
// way the frontend expects (blogs, pagination, data...).
func OK(c *gin.Context, code int, message string, extra gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(code, body)
}
