package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// callerIdentity returns the identity attached by the auth middleware,
// writing a 401 if there is none.
func callerIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, MsgUnauthorized)
		return domain.Identity{}, false
	}
	return id, true
}

// pathUUID parses the named chi URL parameter, writing a 400 with message
// if it is not a UUID.
func pathUUID(w http.ResponseWriter, r *http.Request, param, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, message, err)
		return uuid.Nil, false
	}
	return id, true
}

// decodeAndValidate decodes the body into v and checks its validate tags,
// writing a 400 on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	// An empty body validates as the zero value so clients see every missing field.
	if err := shared.DecodeJSON(w, r, v); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgInvalidRequest, err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgValidationFailed, err)
		return false
	}
	return true
}

// queryInt reads a positive integer query parameter. Missing or malformed
// values yield 0, which the pagination layer replaces with its default.
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
