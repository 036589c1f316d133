package pipeline

import (
	"log"
)

// Logger writes process log lines scoped to one project.
type Logger struct {
	projectID string
}

// NewLogger creates a logger for projectID
func NewLogger(projectID string) *Logger {
	if projectID == "" {
		projectID = "unknown"
	}
	return &Logger{projectID: projectID}
}

// LogError logs an error with context
func (l *Logger) LogError(operation string, err error) {
	log.Printf("[error] project_id=%s operation=%s error=%v", l.projectID, operation, err)
}

// LogInfo logs an info message with context
func (l *Logger) LogInfo(operation string, message string) {
	log.Printf("[info] project_id=%s operation=%s message=%s", l.projectID, operation, message)
}

// LogInfof logs a formatted info message with context
func (l *Logger) LogInfof(operation string, format string, args ...interface{}) {
	log.Printf("[info] project_id=%s operation=%s "+format, append([]interface{}{l.projectID, operation}, args...)...)
}

// LogWarn logs a warning with context
func (l *Logger) LogWarn(operation string, message string) {
	log.Printf("[warn] project_id=%s operation=%s message=%s", l.projectID, operation, message)
}
