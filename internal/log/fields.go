package log

import "log/slog"

// Field names shared across packages.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldDate       = "date"
	FieldActivityID = "activity_id"
	FieldCategory   = "category"
	FieldMinutes    = "minutes"
)

// Component names.
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentActivity = "activity"
	ComponentSession  = "session"
	ComponentView     = "view"
	ComponentStorage  = "storage"
	ComponentWorker   = "worker"
	ComponentSecurity = "security"
	ComponentTrace    = "trace"
	ComponentTemplate = "template"
)

// Operation names.
const (
	OpCreate  = "create"
	OpList    = "list"
	OpSignIn  = "sign_in"
	OpSignOut = "sign_out"
)

const ErrorTypeConfiguration = "configuration_error"

// Fields accumulates attributes in the order they are added, so related
// fields stay together in text output.
type Fields []slog.Attr

func NewFields() Fields {
	return make(Fields, 0, 8)
}

func (f Fields) add(key string, value any) Fields {
	return append(f, slog.Any(key, value))
}

func (f Fields) WithClientIP(ip string) Fields {
	if ip == "" {
		return f
	}
	return f.add(FieldClientIP, ip)
}

// WithError is a no-op for a nil err.
func (f Fields) WithError(err error) Fields {
	if err == nil {
		return f
	}
	return f.add(FieldError, err.Error())
}

func (f Fields) WithOperation(op string) Fields {
	return f.add(FieldOperation, op)
}

func (f Fields) WithDay(userID, date string) Fields {
	return f.add(FieldUserID, userID).add(FieldDate, date)
}

// WithActivity records an activity without its title. Titles are user
// content and never logged.
func (f Fields) WithActivity(id, category string, minutes int) Fields {
	return f.add(FieldActivityID, id).add(FieldCategory, category).add(FieldMinutes, minutes)
}

// WithRequest adds the method and path, the query when present and the user
// agent when known.
func (f Fields) WithRequest(method, path, query, userAgent string) Fields {
	f = f.add(FieldMethod, method).add(FieldPath, path)
	if query != "" {
		f = f.add(FieldQuery, query)
	}
	if userAgent != "" {
		f = f.add(FieldUserAgent, userAgent)
	}
	return f
}

func (f Fields) WithResponse(statusCode int, durationMs int64) Fields {
	return f.add(FieldStatusCode, statusCode).add(FieldDuration, durationMs)
}

// Args converts f for the variadic slog methods.
func (f Fields) Args() []any {
	args := make([]any, len(f))
	for i, a := range f {
		args[i] = a
	}
	return args
}
