package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/mbolis/talentflow/assessment"
	"github.com/mbolis/talentflow/log"
	"github.com/mbolis/talentflow/model"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, body ErrorBody) {
	render.Status(r, status)
	render.JSON(w, r, body)
}

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, r *http.Request, code string, err error) {
	log.Errorf("%s: %s", code, err)
	writeError(w, r, http.StatusInternalServerError, ErrorBody{Message: http.StatusText(http.StatusInternalServerError)})
}

// Will log a debug message, and send an HTTP response with status 404
func LogNotFound(w http.ResponseWriter, r *http.Request, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	writeError(w, r, http.StatusNotFound, ErrorBody{Message: http.StatusText(http.StatusNotFound)})
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string) {
	log.Log(level, code)
	writeError(w, r, status, ErrorBody{Message: http.StatusText(status)})
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	writeError(w, r, status, ErrorBody{Message: errMsg})
}

var errorKinds = []struct {
	kind   error
	status int
	level  log.Level
}{
	{model.ErrValidationFailed, http.StatusUnprocessableEntity, log.DebugLevel},
	{model.ErrNotFound, http.StatusNotFound, log.DebugLevel},
	{model.ErrPreconditionFailed, http.StatusPreconditionFailed, log.InfoLevel},
	{model.ErrTransient, http.StatusServiceUnavailable, log.ErrorLevel},
}

// Will log err under code, and send an HTTP response whose status
// depends on the kind of err. Validation failures list the broken rules
// of every field.
func LogError(w http.ResponseWriter, r *http.Request, code string, err error) {
	for _, k := range errorKinds {
		if !errors.Is(err, k.kind) {
			continue
		}
		log.Logf(k.level, "%s: %s", code, err)
		body := ErrorBody{Message: strings.TrimSuffix(err.Error(), ": "+k.kind.Error())}
		if k.kind == model.ErrValidationFailed {
			if fields := assessment.FieldErrors(err); len(fields) > 0 {
				body.Message = "Some fields are not valid."
				body.Errors = fields
			}
		}
		writeError(w, r, k.status, body)
		return
	}
	LogInternalError(w, r, code, err)
}
