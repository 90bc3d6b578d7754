package rungateway

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/veedubyou/timbre/src/server/internal/errors/api"
	"github.com/veedubyou/timbre/src/server/internal/errors/gateway"
	"github.com/veedubyou/timbre/src/server/internal/lib/request"
	"github.com/veedubyou/timbre/src/server/internal/run/errors"
	"github.com/veedubyou/timbre/src/server/internal/run/usecase"
)

type Gateway struct {
	usecase runusecase.Usecase
}

func NewGateway(usecase runusecase.Usecase) Gateway {
	return Gateway{
		usecase: usecase,
	}
}

func (g Gateway) GetRun(c echo.Context, runID string) error {
	ctx := request.Context(c)

	run, apiErr := g.usecase.GetRun(ctx, runID)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to get run")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, run)
}

func (g Gateway) CreateRun(c echo.Context) error {
	ctx := request.Context(c)

	runRequest := runusecase.RunRequest{}
	err := c.Bind(&runRequest)
	if err != nil {
		err = errors.Wrap(err, "Failed to bind request body to run request")
		apiErr := api.CommitError(err,
			runerrors.BadRunRequestCode,
			"The run request received was malformed. Please contact the developer")
		return gateway.ErrorResponse(c, apiErr)
	}

	run, apiErr := g.usecase.CreateRun(ctx, runRequest)
	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusCreated, run)
}
