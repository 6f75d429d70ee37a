package middleware

import (
	"errors"
	"net/http"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/frahmantamala/attendance-management/pkg/logger"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

// OpenAPIValidator checks requests against the API document before they reach a handler.
// Routes the document does not describe pass through untouched.
type OpenAPIValidator struct {
	router routers.Router
	writer *transport.BaseHandler
}

func NewOpenAPIValidator(doc *openapi3.T) (*OpenAPIValidator, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, err
	}
	return &OpenAPIValidator{router: router, writer: transport.NewBaseHandler(nil)}, nil
}

func (v *OpenAPIValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := v.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		// anonymous calls to protected operations get their 401 from the auth middleware first
		if r.Header.Get("Authorization") == "" && requiresCredentials(route) {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				// bearer tokens are checked by the auth middleware
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			logger.From(r.Context()).Warn("request rejected by api contract", "path", r.URL.Path, "error", err)
			v.writer.WriteAppError(w, contractError(err))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requiresCredentials(route *routers.Route) bool {
	var security openapi3.SecurityRequirements
	if route.Spec != nil {
		security = route.Spec.Security
	}
	if route.Operation != nil && route.Operation.Security != nil {
		security = *route.Operation.Security
	}
	for _, req := range security {
		if len(req) > 0 {
			return true
		}
	}
	return false
}

func contractError(err error) *internal.AppError {
	appErr := internal.NewValidationError("request does not match the API contract", internal.ErrCodeValidationFailed)

	var reqErr *openapi3filter.RequestError
	if !errors.As(err, &reqErr) {
		return appErr
	}
	field := "body"
	if reqErr.Parameter != nil {
		field = reqErr.Parameter.Name
	}
	return appErr.WithDetails(internal.ValidationErrors{Errors: []internal.ValidationError{{
		Field:   field,
		Message: reqErr.Error(),
		Code:    string(internal.ErrCodeValidationFailed),
	}}})
}
