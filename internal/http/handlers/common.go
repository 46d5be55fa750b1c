package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/tasks-be/internal/eventlog"
	"github.com/hongminglow/tasks-be/internal/http/respond"
	"github.com/hongminglow/tasks-be/internal/middleware"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Deps are the collaborators shared by every handler.
type Deps struct {
	Log    logrus.FieldLogger
	Errors eventlog.Recorder
	// Cascaded counts tasks removed by user deletion. Optional.
	Cascaded prometheus.Counter
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Errors == nil {
		d.Errors = eventlog.Discard
	}
	return d
}

// decodeValid reads a JSON body into dst and checks its validate tags.
// Type mismatches (e.g. "true" for a bool) fail decoding.
func decodeValid(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

// serverError logs err, appends it to the error log and answers 500 with
// "<what>: <err>" as a plain-text body.
func (d Deps) serverError(w http.ResponseWriter, r *http.Request, what string, err error) {
	d.Log.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error(what)
	d.Errors.Record(fmt.Sprintf("%s\t%s\t%s\t%s", err.Error(), r.Method, r.URL.RequestURI(), middleware.Origin(r)))
	respond.Text(w, http.StatusInternalServerError, fmt.Sprintf("%s: %s", what, err.Error()))
}
