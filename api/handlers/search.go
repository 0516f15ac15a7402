package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/rabbit/db/searchdb"
	"github.com/meghashyamc/rabbit/logger"
	"github.com/meghashyamc/rabbit/services/search"
	"github.com/meghashyamc/rabbit/validation"
)

type SearchRequest struct {
	Query string `form:"query" validate:"required,valid_query,max=1000"`
}

type SearchResponse struct {
	Results []search.Result `json:"results"`
}

func SetupSearch(router *gin.Engine, logger logger.Logger, service *search.Service, validator *validation.Validator) {
	router.GET("/search", handleSearch(service, logger, validator))
}

func handleSearch(service *search.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SearchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract query parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		results, err := service.Search(request.Query)
		if err != nil {
			c.Abort()
			if errors.Is(err, searchdb.ErrQuery) || errors.Is(err, search.ErrEmptyQuery) {
				writeResponse(c, nil, http.StatusBadRequest, []string{err.Error()})
				return
			}
			logger.Error("search failed", "err", err.Error())
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, SearchResponse{Results: results}, http.StatusOK, nil)
	}
}
