// Package ez registers typed gin actions: bind the input, call the handler,
// write the envelope. Handlers return apperr values and never touch JSON.
package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-leave/internal/transport/http/middleware"
	resp "campus-leave/internal/transport/http/response"
	"campus-leave/pkg/apperr"
)

type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ { return EZ{g: g, log: l} }

// Group returns an EZ on a sub-group carrying extra middleware.
func (e EZ) Group(mw ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group("", mw...), log: e.log}
}

// Action is one route. I is the bound input, O the data payload.
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Status  int    // defaults to 200
	Message string // optional envelope message
	Handler func(c *gin.Context, in *I) (O, error)
}

// pager is satisfied by domain.Page.
type pager interface {
	PageItems() any
	PageMeta() (total int64, page, limit int)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			Fail(c, e.log, bindError(bindErr))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, e.log, err)
			return
		}
		// redirects and file responses write for themselves
		if c.Writer.Written() {
			return
		}

		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		if status == http.StatusNoContent {
			c.Status(status)
			return
		}
		if p, ok := any(out).(pager); ok {
			total, page, limit := p.PageMeta()
			body := resp.Page(p.PageItems(), resp.NewPagination(total, page, limit))
			body.Message = a.Message
			c.JSON(status, body)
			return
		}
		c.JSON(status, resp.OK(a.Message, out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

// Fail writes err as an envelope. Internal causes are logged, never returned.
func Fail(c *gin.Context, l *zap.Logger, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = &apperr.Error{Kind: apperr.KindInternal, Msg: "unhandled error", Err: err}
	}
	code := resp.StatusOf(ae.Kind)
	if ae.Kind == apperr.KindInternal {
		l.Error("request failed",
			zap.String("rid", c.GetString(middleware.CtxRequestID)),
			zap.String("route", c.Request.Method+" "+c.FullPath()),
			zap.String("op", ae.Msg),
			zap.Error(ae.Err),
		)
		c.AbortWithStatusJSON(code, resp.Error(code, ""))
		return
	}
	if ae.Details != nil {
		c.AbortWithStatusJSON(code, resp.ErrorWithDetails(code, ae.Msg, ae.Details))
		return
	}
	c.AbortWithStatusJSON(code, resp.Error(code, ae.Msg))
}

// Param returns a required path parameter.
func Param(c *gin.Context, name string) (string, error) {
	v := strings.TrimSpace(c.Param(name))
	if v == "" {
		return "", apperr.Field(resp.CodeMsgMap[resp.CodeBadRequest], name, "is required")
	}
	return v, nil
}
