package middleware

import (
	"net/http"
	"strconv"

	"docvault/internal/handlers"
	"docvault/internal/metrics"
	"docvault/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
	id           string
}

var GetHandler = WrapPublic(handlers.GetHandler)
var RegisterHandler = WrapPublic(handlers.RegisterHandler)
var LoginHandler = WrapPublic(handlers.LoginHandler)

var UploadHandler = Wrap(handlers.UploadHandler)
var QueryHandler = Wrap(handlers.QueryHandler)
var ListDocumentsHandler = Wrap(handlers.ListDocumentsHandler)
var DeleteDocumentHandler = Wrap(handlers.DeleteDocumentHandler)
var ResetHandler = Wrap(handlers.ResetHandler)
var GetStatusHandler = Wrap(handlers.GetStatusHandler)

// Wrap is the chain for tenant-scoped routes: trace id, rate limiting, then
// token verification. The verified identity rides the request context.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return wrapChain(next, true)
}

// WrapPublic skips token verification. Register and login have no token yet.
func WrapPublic(next http.HandlerFunc) http.HandlerFunc {
	return wrapChain(next, false)
}

func wrapChain(next http.HandlerFunc, requireAuth bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec}, requireAuth)

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct, requireAuth bool) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Info("New request received")
	re = injectTrace(re)
	re = rateLimiter(re)
	if re.badRequest.isBadRequest {
		return re //stop here if rate limit fails
	}
	if requireAuth {
		re = authenticate(re)
	}
	return re
}
