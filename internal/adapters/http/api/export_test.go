package api

// ErrorType exposes the status classification to tests.
var ErrorType = getErrorType
