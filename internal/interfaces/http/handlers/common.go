// Package handlers implements the gin handlers of the scoring service.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/dockrmsd/internal/domain/scoring"
	"github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dockrmsd/internal/interfaces/http/middleware"
	"github.com/turtacn/dockrmsd/pkg/types/common"
)

func writeSuccess[T any](c *gin.Context, status int, data T) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = middleware.GetRequestID(c)
	c.JSON(status, resp)
}

// writeAppError maps err's code to its HTTP status and names the failed
// scoring stage. Server-side failures are logged and masked with the code's
// default message.
func writeAppError(c *gin.Context, logger logging.Logger, err error) {
	resp, status := common.ErrorResponseFor(err)
	if status >= 500 {
		logger.Error("request failed",
			logging.Err(err),
			logging.ErrCode(err),
			logging.String("request_id", middleware.GetRequestID(c)),
		)
	}
	_ = c.Error(err)

	resp.Error.Stage = string(scoring.FailedStage(err))
	resp.RequestID = middleware.GetRequestID(c)
	c.AbortWithStatusJSON(status, resp)
}

//Personal.AI order the ending
