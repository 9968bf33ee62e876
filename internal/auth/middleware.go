package auth

import (
	xhttp "github.com/ibuc/dracmas-service/pkg/http"
)

const capabilityCtxKey = "auth:capabilities"

// CapabilityMiddleware resolves the caller's capabilities from the role
// header forwarded by the upstream auth gateway and stashes them on the
// request. Resolution happens exactly once per request.
func CapabilityMiddleware(roleHeader string) xhttp.MiddlewareFunc {
	return func(next xhttp.RequestHandler) xhttp.RequestHandler {
		return func(ctx *xhttp.RequestCtx) {
			role := string(ctx.Request.Header.Peek(roleHeader))
			ctx.SetUserValue(capabilityCtxKey, FromRole(role))
			next(ctx)
		}
	}
}

// Capabilities returns the capability set resolved for this request.
func Capabilities(ctx *xhttp.RequestCtx) Capability {
	if v, ok := ctx.UserValue(capabilityCtxKey).(Capability); ok {
		return v
	}
	return 0
}

// Require guards a handler behind a capability check.
func Require(want Capability, h xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		if !Capabilities(ctx).Has(want) {
			ctx.Error(xhttp.StatusText(xhttp.StatusForbidden), xhttp.StatusForbidden)
			return
		}
		h(ctx)
	}
}
