package services

import "errors"

var (
	// ErrNotFound covers both missing rows and rows owned by someone else.
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDefaultCategory    = errors.New("default categories cannot be deleted")
	ErrFileTooLarge       = errors.New("file exceeds the upload size limit")
	ErrUnsupportedFile    = errors.New("only image files and PDFs are allowed")
)
