package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"docvault/internal/adapter/utils"
	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/handlers"
)

var _authStore *auth.Store

// InitAuth hands the middleware the token verifier. Must run before the
// server starts accepting requests.
func InitAuth(store *auth.Store) {
	_authStore = store
}

func injectTrace(re requestResponseStruct) requestResponseStruct {
	re.logger.Debug("Injecting trace middleware")
	req := re.req
	if req == nil {
		//this is a bad request
		re.badRequest.httpCode = http.StatusBadRequest
		re.badRequest.errorMessage = "request is empty"
		re.badRequest.isBadRequest = true
		return re
	}
	trace := req.Header.Get("X-Trace-Id")
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	re.logger = re.logger.With("traceId", trace)
	ctx := context.WithValue(req.Context(), config.TRACE_ID_KEY, trace)
	req.Header.Set(`X-Trace-Id`, trace)
	re.req = req.WithContext(ctx)

	re.logger.Debug("trace middleware injected")
	return re
}

func authenticate(re requestResponseStruct) requestResponseStruct {
	re.logger.Debug("Authenticating request")

	identity, ok := verifyBearerToken(re.req.Header.Get("Authorization"))
	if !ok {
		re.badRequest.isBadRequest = true
		re.badRequest.errorMessage = "Unauthorized"
		re.badRequest.httpCode = http.StatusUnauthorized
		return re
	}

	ctx := context.WithValue(re.req.Context(), config.IDENTITY_KEY, identity)
	re.req = re.req.WithContext(ctx)
	re.logger.Debug("Authorized", "username", identity.Username)
	return re
}

func verifyBearerToken(authHeader string) (auth.Identity, bool) {
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return auth.Identity{}, false
	}
	identity, err := _authStore.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return auth.Identity{}, false
	}
	return identity, true
}

func rateLimiter(re requestResponseStruct) requestResponseStruct {
	re.logger.Debug("Rate limiter middleware")
	ip, _, err := net.SplitHostPort(re.req.RemoteAddr)
	if err != nil {
		ip = re.req.RemoteAddr
	}

	if !limiterInstance.GetLimiter(ip).Allow() {
		re.logger.Error("Too many requests", "Rate Limiter exceeded", ip)
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusTooManyRequests,
			errorMessage: "Rate limit exceeded",
		}
		return re
	}
	re.logger.Debug("Rate limiter middleware authorized")
	return re
}

func handleBadRequest(re requestResponseStruct) bool {
	if re.badRequest.isBadRequest {
		re.logger.Warn("Bad request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", re.req.RemoteAddr)
		handlers.WriteErrorResponse(re.writer, re.badRequest.httpCode, re.badRequest.id, re.badRequest.errorMessage)
		return false
	}
	return true
}
