package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldAccessor   = "accessor"
	FieldTable      = "table"
	FieldRows       = "rows"
	FieldMonths     = "months"
	FieldDBPath     = "db_path"
	FieldCacheHit   = "cache_hit"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentFacts     = "facts"
	ComponentAnalytics = "analytics"
	ComponentCache     = "cache"
)

// Operations defines standard operation names
const (
	OpQuery      = "query"
	OpProbe      = "probe"
	OpRefresh    = "refresh"
	OpInvalidate = "invalidate"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
