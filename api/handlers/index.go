package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meghashyamc/rabbit/db/kvdb"
	"github.com/meghashyamc/rabbit/logger"
	"github.com/meghashyamc/rabbit/services/index"
	"github.com/meghashyamc/rabbit/validation"
)

type IndexRequest struct {
	Path string `json:"path" validate:"required,valid_path"`
}

type IndexResponse struct {
	ID string `json:"id"`
}

type IndexStatusRequest struct {
	ID string `uri:"id" validate:"required,uuid4"`
}

func SetupIndex(router *gin.Engine, logger logger.Logger, service *index.Service, validator *validation.Validator) {
	router.POST("/index", handleIndex(service, logger, validator))
	router.GET("/index/:id", handleIndexStatus(service, logger, validator))
}

func handleIndex(service *index.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := IndexRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected parameters from index request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		requestID := uuid.New().String()
		if err := service.Build(request.Path, requestID); err != nil {
			logger.Warn("could not start indexing", "path", request.Path, "err", err.Error())
			c.Abort()
			if errors.Is(err, index.ErrIndexingInProgress) {
				writeResponse(c, nil, http.StatusConflict, []string{err.Error()})
				return
			}
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, IndexResponse{ID: requestID}, http.StatusAccepted, nil)
	}
}

func handleIndexStatus(service *index.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := IndexStatusRequest{}
		if err := c.ShouldBindUri(&request); err != nil {
			logger.Warn("could not extract request id", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request id"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate index status request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		status, err := service.GetStatus(request.ID)
		if err != nil {
			c.Abort()
			if errors.Is(err, kvdb.ErrNotFound) {
				writeResponse(c, nil, http.StatusNotFound, []string{"unknown request id"})
				return
			}
			logger.Error("could not get index status", "request_id", request.ID, "err", err.Error())
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		switch status.State {
		case index.StatePending, index.StateRunning:
			writeResponse(c, status, http.StatusAccepted, nil)
		default:
			writeResponse(c, status, http.StatusOK, nil)
		}
	}
}
