package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	ge "github.com/ventrath/gantry/pkg/errors"
	"github.com/ventrath/gantry/pkg/structs"
)

var (
	errmap map[int][]error = map[int][]error{
		http.StatusBadRequest: []error{
			ge.ErrNoJobs,
			ge.ErrNoSteps,
			ge.ErrNoCommand,
			ge.ErrParentNotFound,
			ge.ErrETagMismatch,
			ge.ErrMaxExceeded,
			ge.ErrInvalidState,
			ge.ErrInvalidArg,
			ge.ErrNotSupported,
			ge.ErrCycleDetected,
			ge.ErrUnknownDep,
			ge.ErrNotTriggered,
		},
		http.StatusConflict: []error{
			ge.ErrArtifactExists,
		},
		http.StatusNotFound: []error{
			ge.ErrArtifactMissing,
		},
	}
)

// mapError returns the http status code for a given error from Gantry, or
// http.StatusInternalServerError if the error is not recognised.
func mapError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	for code, errs := range errmap {
		for _, e := range errs {
			if errors.Is(err, e) {
				return code
			}
		}
	}
	return http.StatusInternalServerError
}

// unmarshalJson reads the body of a request and attempts to unmarshal it into the given object.
// This function writes an error to the writer if an error occurs, and returns the error.
func unmarshalJson(w http.ResponseWriter, r *http.Request, obj interface{}) error {
	if r.Body == nil {
		http.Error(w, "No body", http.StatusBadRequest)
		return fmt.Errorf("no body")
	}
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields() // catch unwanted fields

	err := d.Decode(obj)
	if err != nil {
		// bad JSON or unrecognized json field
		http.Error(w, err.Error(), http.StatusBadRequest)
		return fmt.Errorf("bad json: %v", err)
	}

	return nil
}

// unmarshalQuery fills a Query from the request's query string.
func unmarshalQuery(w http.ResponseWriter, r *http.Request, q *structs.Query) error {
	values := r.URL.Query()

	for key, set := range map[string]*int{"limit": &q.Limit, "offset": &q.Offset} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("bad %s: %s", key, raw), http.StatusBadRequest)
			return err
		}
		*set = v
	}
	for key, set := range map[string]*int64{
		"updated_before": &q.UpdatedBefore,
		"updated_after":  &q.UpdatedAfter,
		"created_before": &q.CreatedBefore,
		"created_after":  &q.CreatedAfter,
	} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("bad %s: %s", key, raw), http.StatusBadRequest)
			return err
		}
		*set = v
	}

	q.RunIDs = values["run_ids"]
	q.JobIDs = values["job_ids"]
	q.StepIDs = values["step_ids"]
	for _, raw := range values["statuses"] {
		st := structs.ToStatus(raw)
		if st == "" {
			http.Error(w, fmt.Sprintf("bad status: %s", raw), http.StatusBadRequest)
			return fmt.Errorf("bad status: %s", raw)
		}
		q.Statuses = append(q.Statuses, st)
	}

	q.Sanitize()
	return nil
}
