package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// STANDARD FIELDS - HTTP
// =================================================================================

// RequestID tags an entry with the request ID.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method tags an entry with the HTTP method.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path tags an entry with the request path.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status tags an entry with the HTTP status code.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration tags an entry with the request duration.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// ClientIP tags an entry with the client IP.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// =================================================================================
// STANDARD FIELDS - DOMAIN
// =================================================================================

// AppID tags an entry with a registered app id.
func AppID(v int64) zap.Field {
	return zap.Int64("app_id", v)
}

// UserID tags an entry with the user id.
func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// Mail tags an entry with a mail address (use sparingly in prod).
func Mail(v string) zap.Field {
	return zap.String("mail", v)
}

// Audience tags an entry with a token audience (app base URL).
func Audience(v string) zap.Field {
	return zap.String("aud", v)
}

// Issuer tags an entry with a token issuer.
func Issuer(v string) zap.Field {
	return zap.String("iss", v)
}

// RedirectURI tags an entry with an authorize redirect target.
func RedirectURI(v string) zap.Field {
	return zap.String("redirect_uri", v)
}

// =================================================================================
// STANDARD FIELDS - SYSTEM
// =================================================================================

// Component tags an entry with the component/module name.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op tags an entry with the current operation.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer tags an entry with the layer (controller, service, store).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err wraps an error as a field.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// =================================================================================
// GENERIC FIELDS
// =================================================================================

// String builds a generic string field.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int builds a generic int field.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

// Bool builds a generic bool field.
func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}

// Any builds a generic field of any type.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
