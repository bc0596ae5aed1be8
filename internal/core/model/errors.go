package model

import "errors"

var (
	ErrInvalidGraphShape = errors.New("invalid graph shape")
	ErrNodeNotFound      = errors.New("node not found")
	ErrEdgeNotFound      = errors.New("edge not found")
	ErrDuplicateNodeName = errors.New("duplicate node name")
	ErrSelfLoop          = errors.New("self-loop edge rejected")

	ErrInvalidSuggestionType           = errors.New("invalid suggestion type")
	ErrUnresolvableSuggestionEndpoints = errors.New("unresolvable suggestion endpoints")

	ErrRenderTargetUnavailable  = errors.New("render target unavailable")
	ErrPersistenceRequestFailed = errors.New("persistence request failed")
	ErrCloneFailure             = errors.New("snapshot clone failure")
)
