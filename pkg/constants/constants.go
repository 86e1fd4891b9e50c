package constants

import (
	"github.com/go-playground/validator/v10"
)

type ContextKey string

const (
	TenantIDKey  ContextKey = "tenantID"
	LoggerKey    ContextKey = "logger"
	RequestIDKey ContextKey = "requestID"
)

var Validate = validator.New(validator.WithRequiredStructEnabled())
