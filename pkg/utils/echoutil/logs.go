package echoutil

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// LogHandlerFunc logs each request and its response.
func LogHandlerFunc(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		meth := req.Method
		path := req.URL
		BEGIN := time.Now()
		c.Logger().Infof(
			"< request @[%s] %s %s from %s", BEGIN, meth, path, c.RealIP(),
		)

		err := next(c)

		END := time.Now()
		status := c.Response().Status
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		}
		if err != nil {
			c.Logger().Warnf(
				"> response @[%s] status = %d (for request @[%s] %s %s) in %v / error = %+v",
				END, status, BEGIN, meth, path, END.Sub(BEGIN), err,
			)
		} else {
			c.Logger().Infof(
				"> response @[%s] status = %d (for request @[%s] %s %s) in %v",
				END, status, BEGIN, meth, path, END.Sub(BEGIN),
			)
		}
		return err
	}
}

// ParseLevel reads one of "debug", "info", "warn", "error" or "off".
//
// ok is false for other names.
func ParseLevel(loglevel string) (lvl log.Lvl, ok bool) {
	switch strings.ToLower(loglevel) {
	case "debug":
		return log.DEBUG, true
	case "info":
		return log.INFO, true
	case "warn", "":
		return log.WARN, true
	case "error":
		return log.ERROR, true
	case "off":
		return log.OFF, true
	default:
		return log.WARN, false
	}
}

func SetLevel(e *echo.Echo, loglevel string) {
	lvl, ok := ParseLevel(loglevel)
	e.Logger.SetLevel(lvl)
	if !ok {
		e.Logger.Warnf("unknown loglevel: %s . fall-backed to warn", loglevel)
	}
}
