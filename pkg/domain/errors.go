package domain

import "errors"

// ErrNilTarget is returned when an observer is created without a target object.
var ErrNilTarget = errors.New("observe: target is nil")

// ErrUnknownProperty is returned when a property is not tracked by an observer.
var ErrUnknownProperty = errors.New("property is not observed")

// ErrJournalClosed is returned when appending to a journal that has been closed.
var ErrJournalClosed = errors.New("journal closed")
