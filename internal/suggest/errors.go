package suggest

import "fmt"

// Stage is the step of a suggestion that failed.
type Stage string

const (
	StageConfig   Stage = "config"
	StageFetch    Stage = "fetch"
	StageGenerate Stage = "generate"
	StageDecode   Stage = "decode"
)

// SuggestionError wraps a failure in one stage of a suggestion.
type SuggestionError struct {
	Stage Stage
	Err   error
}

func (e *SuggestionError) Error() string {
	return fmt.Sprintf("suggestion %s: %v", e.Stage, e.Err)
}

func (e *SuggestionError) Unwrap() error { return e.Err }
