package services

import (
	"errors"
	"fmt"
	"strings"
)

// Client-facing error taxonomy. Controllers map these onto HTTP statuses;
// anything else is treated as a server error.
var (
	ErrValidation       = errors.New("invalid request")
	ErrDebateNotFound   = errors.New("debate not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrCategoryNotFound = errors.New("category does not exist")
	ErrMustVote         = errors.New("must vote before commenting")
	ErrReplyDepth       = errors.New("replies to replies are not allowed")
)

func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// ModerationRejectedError aborts a mutation when the gate returns REJECT.
// No state is written and no notification is sent.
type ModerationRejectedError struct {
	Reason     string
	Categories []string
}

func (e *ModerationRejectedError) Error() string {
	if len(e.Categories) == 0 {
		return "content rejected by moderation: " + e.Reason
	}
	return fmt.Sprintf("content rejected by moderation: %s (%s)", e.Reason, strings.Join(e.Categories, ", "))
}
