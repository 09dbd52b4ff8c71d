package versionrepo

import "errors"

var (
	ErrNotFound      = errors.New("version not found")
	ErrAlreadyExists = errors.New("version already exists")
)
