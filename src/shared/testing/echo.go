package testing

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// PrepareEchoContext lets gateway tests call a handler directly, with the
// path params that the router would normally fill in
func PrepareEchoContext(request *http.Request, response http.ResponseWriter, params ...string) echo.Context {
	e := echo.New()
	c := e.NewContext(request, response)

	if len(params)%2 != 0 {
		panic("path params must come in name, value pairs")
	}

	var names, values []string
	for i := 0; i < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}

	c.SetParamNames(names...)
	c.SetParamValues(values...)

	return c
}
