package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/mocks"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
	TraceID string              `json:"traceId"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return env
}

func decodeData(t *testing.T, env envelope, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

// newRequest builds a request whose body is the JSON encoding of body, or
// the raw string when body is a string.
func newRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asCaller(req *http.Request, caller domain.Identity) *http.Request {
	return req.WithContext(shared.WithIdentity(req.Context(), caller))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func addUser(t *testing.T, users *mocks.MockUserStore, name, email string) domain.Identity {
	t.Helper()
	u, err := domain.NewUser(name, email, "plain:secret1")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), u))
	return domain.Identity{UserID: u.ID, Email: strings.ToLower(u.Email)}
}
