package types

import "errors"

var (
	// ErrRateLimited means the language-model API answered 429.
	ErrRateLimited = errors.New("language model rate limit reached")
	// ErrJobTimeout means the job did not reach a terminal state within the max-wait policy.
	ErrJobTimeout = errors.New("assistant job did not finish in time")
	// ErrNoData means a provider answered but had nothing for the ticker.
	ErrNoData = errors.New("no data returned")
	// ErrMissingSecret means a credential needed by the configured providers is absent.
	ErrMissingSecret = errors.New("missing required secret")
)
