package domain

import "errors"

var (
	ErrConfigurationMissing = errors.New("configuration_missing")
	ErrConfigurationExists  = errors.New("configuration_exists")
	ErrIncompleteSettings   = errors.New("incomplete_settings")
	ErrDuplicateRUC         = errors.New("duplicate_ruc")
)
