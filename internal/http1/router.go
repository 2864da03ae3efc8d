package http1

import (
	"context"
	"errors"
	"strings"
)

const notFoundText = "The requested content does not exist"

// Handler is implemented by the functions bound to routes.
//
// A handler either returns the response to send to the client, or an error.
// Errors of type *StatusError are sent as a plain text response with the
// status they carry; other errors become a "500 Internal Server Error".
type Handler interface {
	Handle(ctx context.Context, req *Request) (*Response, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

func (f HandlerFunc) Handle(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Sink is the destination of serialized responses, typically the connection
// that the request was received on.
type Sink interface {
	SendAll(data []byte) error
}

// StatusError is an error carrying the HTTP status and text body of the
// response that should be sent to the client.
type StatusError struct {
	Code    int
	Message string
	Text    string
}

func (e *StatusError) Error() string { return e.Text }

// Errorf returns a *StatusError with the given status and text.
func Errorf(code int, message, text string) error {
	return &StatusError{Code: code, Message: message, Text: text}
}

func BadRequest(text string) error { return Errorf(400, "Bad Request", text) }
func Forbidden(text string) error  { return Errorf(403, "Forbidden", text) }
func NotFound(text string) error   { return Errorf(404, "Not Found", text) }

// Route binds a handler to requests with a method and path.
//
// When Exact is true the path of the request must be equal to Path, otherwise
// Path is matched as a literal prefix of the request path.
type Route struct {
	Method  string
	Path    string
	Handler Handler
	Exact   bool
}

func (r *Route) Match(req *Request) bool {
	if r.Method != req.Method {
		return false
	}
	if r.Exact {
		return r.Path == req.Path
	}
	return strings.HasPrefix(req.Path, r.Path)
}

// Router dispatches requests to the first route that matches them, in the
// order the routes were added.
//
// Routes must be added before the router starts serving requests; the route
// table is read without synchronization afterwards.
type Router struct {
	routes []Route
}

// AddRoute appends a route to the table. Routes are never de-duplicated or
// reordered.
func (r *Router) AddRoute(method, path string, handler Handler, exact bool) {
	r.routes = append(r.routes, Route{
		Method:  method,
		Path:    path,
		Handler: handler,
		Exact:   exact,
	})
}

// Routes returns a copy of the route table.
func (r *Router) Routes() []Route {
	return append([]Route{}, r.routes...)
}

// Lookup returns the first route matching the request.
func (r *Router) Lookup(req *Request) (*Route, bool) {
	for i := range r.routes {
		if route := &r.routes[i]; route.Match(req) {
			return route, true
		}
	}
	return nil, false
}

// Dispatch runs the handler of the first matching route and returns the
// response to send. If no route matches, the response is a 404. Errors
// returned by the handler are rendered to a response, the only error returned
// by Dispatch is the one of a handler that was not a *StatusError, along with
// the 500 response built for it.
func (r *Router) Dispatch(ctx context.Context, req *Request) (*Response, error) {
	route, ok := r.Lookup(req)
	if !ok {
		return NotFoundResponse(), nil
	}
	res, err := route.Handler.Handle(ctx, req)
	if err != nil {
		return ErrorResponse(err), internalError(err)
	}
	if res == nil {
		res = NewResponse()
	}
	return res, nil
}

// RouteRequest dispatches the request and sends exactly one serialized
// response to the sink. The response that was sent is returned.
func (r *Router) RouteRequest(ctx context.Context, req *Request, sink Sink) (*Response, error) {
	res, err := r.Dispatch(ctx, req)
	if sendErr := sink.SendAll(res.Serialize()); sendErr != nil {
		return res, sendErr
	}
	return res, err
}

// NotFoundResponse is the response sent when no route matches a request.
func NotFoundResponse() *Response {
	return NewResponse().SetStatus(404, "Not Found").Text(notFoundText)
}

// ErrorResponse renders err as a plain text response.
func ErrorResponse(err error) *Response {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return NewResponse().SetStatus(statusErr.Code, statusErr.Message).Text(statusErr.Text)
	}
	return NewResponse().SetStatus(500, "Internal Server Error").Text("Internal Server Error")
}

func internalError(err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return nil
	}
	return err
}
