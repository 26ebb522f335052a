package errors

import (
	goerrors "errors"
	"fmt"
	"strings"
)

// ErrBenefitNotFound is returned when the content repository has no record for a benefit id.
var ErrBenefitNotFound = goerrors.New("benefit not found")

// InvalidInputError covers malformed data handed to the mapper or malformed requests.
type InvalidInputError struct {
	Err error
	Msg string
}

func (e *InvalidInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid input: %s: %s", e.Msg, e.Err)
	}
	return fmt.Sprintf("invalid input: %s", e.Msg)
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

type InvalidRequesterIdentityError struct {
	BapID  string
	BapURI string
}

func (e *InvalidRequesterIdentityError) Error() string {
	return "Invalid BAP ID or URI"
}

type UnsupportedDomainError struct {
	Domain string
}

func (e *UnsupportedDomainError) Error() string {
	return "Invalid domain provided"
}

// UpstreamFetchError wraps failures talking to the content repository or the application store.
// StatusCode is zero when no response was received.
type UpstreamFetchError struct {
	Err        error
	Source     string
	StatusCode int
}

func (e *UpstreamFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s fetch failed with status code %d: %s", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s fetch failed: %s", e.Source, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }

// InitStage names the step of the init pipeline that failed.
type InitStage string

const (
	StageFetch  InitStage = "fetch"
	StageMap    InitStage = "map"
	StageSplice InitStage = "splice"
)

type InitializationError struct {
	Stage     InitStage
	BenefitID string
	Err       error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("failed to initialize benefit %q at %s stage: %s", e.BenefitID, e.Stage, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

type MissingConfigurationError struct {
	Keys []string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("One or more required environment variables are missing or empty: %s",
		strings.Join(e.Keys, ", "))
}
