// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/corefield/opsdesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger logs a handler failure and renders the error page in one
// step, so handlers don't repeat the log-then-render dance.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs err at error level and renders the error page with
// userMsg. backURL is where the page's back link points.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method))

	w.WriteHeader(http.StatusInternalServerError)
	templates.Render(w, r, "error_page", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Something went wrong", backURL),
		Message: userMsg,
	})
}

// LogBadRequest logs err at warn level and renders the error page with
// a 400 status.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method))

	w.WriteHeader(http.StatusBadRequest)
	templates.Render(w, r, "error_page", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Invalid request", backURL),
		Message: userMsg,
	})
}

// LogNotFound renders the error page with a 404 status. Nothing is
// logged at error level; a missing record is not a fault.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, userMsg, backURL string) {
	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_page", pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Not found", backURL),
		Message: userMsg,
	})
}
