package errors

import (
	"github.com/sirupsen/logrus"
)

// FieldsFor extracts structured logging fields from an error. For an
// AppError this includes the code, retryable flag and any attached context.
func FieldsFor(err error) logrus.Fields {
	fields := logrus.Fields{}
	appErr, ok := err.(*AppError)
	if !ok {
		return fields
	}

	fields["error_code"] = appErr.Code
	fields["retryable"] = appErr.Retryable
	for k, v := range appErr.Context {
		fields[k] = v
	}
	return fields
}

// LogError logs an error with its structured context at error level.
func LogError(logger *logrus.Logger, err error, message string) {
	logger.WithError(err).WithFields(FieldsFor(err)).Error(message)
}

// LogWarn logs an error with its structured context at warn level.
func LogWarn(logger *logrus.Logger, err error, message string) {
	logger.WithError(err).WithFields(FieldsFor(err)).Warn(message)
}

// LogRetryableError logs retryable errors at warn level and permanent
// failures at error level.
func LogRetryableError(logger *logrus.Logger, err error, message string) {
	if IsRetryable(err) {
		LogWarn(logger, err, message)
	} else {
		LogError(logger, err, message)
	}
}
