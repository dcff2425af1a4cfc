package ginserver

import (
	_ "embed"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

const swaggerDocPath = "/swagger/doc.json"

//go:embed swagger/openapi.json
var swaggerDoc []byte

//go:embed swagger/index.html
var swaggerHTML string

// registerSwaggerRoutes serves the OpenAPI document of the booking API and a Swagger UI page for it.
func registerSwaggerRoutes(router gin.IRoutes) {
	page := []byte(strings.ReplaceAll(swaggerHTML, "{{DOC_URL}}", swaggerDocPath))
	router.GET(swaggerDocPath, func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache")
		c.Data(http.StatusOK, "application/json", swaggerDoc)
	})
	router.GET("/swagger", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
}
