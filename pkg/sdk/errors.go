package questsearch

import (
	"github.com/kailas-cloud/questsearch/internal/corpus"
	"github.com/kailas-cloud/questsearch/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation       = domain.ErrValidation
	ErrIndexUnavailable = domain.ErrIndexUnavailable
	ErrExecutionFailed  = domain.ErrExecutionFailed
	ErrWriteFailed      = domain.ErrWriteFailed
	ErrDuplicate        = domain.ErrDuplicate
	ErrNestingTooDeep   = domain.ErrNestingTooDeep
	ErrEmptyCorpus      = corpus.ErrEmpty
)

// ValidationError names the rejected search parameter. Use errors.As.
type ValidationError = domain.ValidationError
