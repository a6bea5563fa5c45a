package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/hay-kot/postbox/internal/core/message"
)

// HandleSubmit accepts a form-encoded username/message pair, relays it to the
// listener and redirects home. The client learns nothing about delivery.
func (s *Server) HandleSubmit(ctx *gin.Context) {
	req := ctx.Request

	// The body is parsed as a query string whatever its Content-Type.
	body, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, req.Body, s.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.log.Warn().
				Str("request_id", requestid.Get(ctx)).
				Int64("limit", tooLarge.Limit).
				Msg("submission body too large")
			ctx.String(http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.log.Debug().Err(err).Str("request_id", requestid.Get(ctx)).Msg("read submission body")
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		// Fields that did parse are still used.
		s.log.Debug().Err(err).Str("request_id", requestid.Get(ctx)).Msg("malformed form body")
	}

	rec := message.Record{
		Username: form.Get("username"),
		Message:  form.Get("message"),
	}

	sendCtx, cancel := context.WithTimeout(req.Context(), s.opts.SendTimeout)
	defer cancel()

	if err := s.sender.Send(sendCtx, rec); err != nil {
		s.log.Warn().Err(err).Str("request_id", requestid.Get(ctx)).Msg("relay send failed")
	}

	ctx.Redirect(http.StatusFound, "/")
}
