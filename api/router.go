package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/rabbit/api/handlers"
	"github.com/meghashyamc/rabbit/logger"
	"github.com/meghashyamc/rabbit/services/index"
	"github.com/meghashyamc/rabbit/services/search"
	"github.com/meghashyamc/rabbit/validation"
)

func setupRoutes(router *gin.Engine, logger logger.Logger, indexService *index.Service, searchService *search.Service, validator *validation.Validator) {
	router.GET("/health", health())

	handlers.SetupIndex(router, logger, indexService, validator)
	handlers.SetupSearch(router, logger, searchService, validator)
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
