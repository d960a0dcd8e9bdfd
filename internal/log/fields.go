package log

import "time"

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
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldMonth      = "month"
	FieldCategory   = "category"
	FieldEntryName  = "entry_name"
	FieldAmount     = "amount"
	FieldIndex      = "index"
	FieldTurnStatus = "turn_status"
	FieldTurns      = "turns"
	FieldPromptLen  = "prompt_chars"
	FieldModel      = "model"
	FieldBackend    = "backend"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentProxy     = "proxy"
	ComponentSession   = "session"
	ComponentAdvisor   = "advisor"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentAuditor   = "auditor"
	ComponentSheets    = "sheets"
	ComponentCLI       = "cli"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
)

const (
	OpAddEntry    = "add_entry"
	OpRemoveEntry = "remove_entry"
	OpLoadMonth   = "load_month"
	OpLoadHistory = "load_history"
	OpChat        = "chat"
	OpClearChat   = "clear_chat"
	OpPublish     = "publish"
	OpExport      = "export"
	OpStartup     = "startup"
	OpShutdown    = "shutdown"
)

// LogFields builds a set of structured attributes.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithEntry adds the fields describing one ledger entry.
func (f LogFields) WithEntry(month, category, name string, amount float64) LogFields {
	f[FieldMonth] = month
	f[FieldCategory] = category
	f[FieldEntryName] = name
	f[FieldAmount] = amount
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, duration time.Duration) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = duration.Milliseconds()
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to key/value pairs for slog.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
