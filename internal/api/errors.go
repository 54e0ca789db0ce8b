package api

import (
	"errors"
	"fmt"
)

// Op names one backend operation. Each op has the generic message shown when the backend
// error body carries no "error" field.
type Op string

const (
	OpSubmitSearch   Op = "submit-search"
	OpRecentSearches Op = "recent-searches"
	OpGenerateIdeas  Op = "generate-ideas"
	OpEvidence       Op = "project-evidence"
	OpSavedList      Op = "saved-list"
	OpSave           Op = "save"
	OpDelete         Op = "delete-saved"
	OpSavedProject   Op = "saved-project"
	OpSavedEvidence  Op = "saved-evidence"
)

var fallbackMessages = map[Op]string{
	OpSubmitSearch:   "Failed to generate project ideas",
	OpRecentSearches: "Failed to fetch recent searches",
	OpGenerateIdeas:  "Failed to generate project ideas",
	OpEvidence:       "Failed to fetch project evidence",
	OpSavedList:      "Failed to fetch saved projects",
	OpSave:           "Failed to save project",
	OpDelete:         "Failed to delete project",
	OpSavedProject:   "Failed to fetch saved project",
	OpSavedEvidence:  "Failed to fetch saved project evidence",
}

func (o Op) Fallback() string {
	if m, ok := fallbackMessages[o]; ok {
		return m
	}
	return "Request failed"
}

// Error is a non-2xx backend response.
type Error struct {
	Op      Op
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
}

// Message returns the user-facing text for err: the backend message for *Error, the op
// fallback for transport failures, or err's own text.
func Message(op Op, err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if op != "" {
		return op.Fallback()
	}
	return err.Error()
}
