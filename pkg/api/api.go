package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/absmach/supermq"
	apiutil "github.com/absmach/supermq/api/http/util"

	pkgerrors "github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/errors"
	"github.com/leaderboard-modeles-IA-francais/leaderboard/submission"
)

const ContentType = "application/json"

func EncodeResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	if ar, ok := response.(supermq.Response); ok {
		for k, v := range ar.Headers() {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", ContentType)
		w.WriteHeader(ar.Code())

		if ar.Empty() {
			return nil
		}
	}

	return json.NewEncoder(w).Encode(response)
}

// EncodeError maps service errors to HTTP statuses. Validation rejections are
// expected outcomes and carry their reason to the client verbatim; anything
// unrecognized becomes an opaque 500.
func EncodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", ContentType)

	var message string
	switch {
	case isRejection(err):
		w.WriteHeader(http.StatusUnprocessableEntity)
		message = err.Error()
	case errors.Is(err, pkgerrors.ErrAlreadyVoted):
		w.WriteHeader(http.StatusConflict)
		message = err.Error()
	case errors.Is(err, apiutil.ErrUnsupportedContentType):
		w.WriteHeader(http.StatusUnsupportedMediaType)
		message = err.Error()
	case errors.Is(err, apiutil.ErrValidation),
		errors.Is(err, pkgerrors.ErrEmptyKey),
		errors.Is(err, pkgerrors.ErrInvalidData):
		w.WriteHeader(http.StatusBadRequest)
		message = err.Error()
	case errors.Is(err, pkgerrors.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		message = err.Error()
	default:
		w.WriteHeader(http.StatusInternalServerError)
		message = "internal server error"
	}

	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func isRejection(err error) bool {
	_, ok := submission.IsRejection(err)

	return ok
}
