package config

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownPosition      = errors.New("config.Toasts: unknown position")
	ErrAutoCloseTooLow      = errors.New("config.Toasts: auto_close_ms must be greater than zero")
	ErrMaxVisibleNegative   = errors.New("config.Toasts: max_visible must not be negative")
	ErrMissingEmptyMessage  = errors.New("config.Messages: must set empty_input")
	ErrMissingCopiedMessage = errors.New("config.Messages: must set copied")
)

type Position string

const (
	PositionUnknown      Position = ""
	PositionTopRight     Position = "top-right"
	PositionTopCenter    Position = "top-center"
	PositionTopLeft      Position = "top-left"
	PositionBottomRight  Position = "bottom-right"
	PositionBottomCenter Position = "bottom-center"
	PositionBottomLeft   Position = "bottom-left"
)

// ToastOptions control how the browser renders and expires toasts.
type ToastOptions struct {
	Position        Position `json:"position"`
	AutoCloseMS     int      `json:"auto_close_ms"`
	HideProgressBar bool     `json:"hide_progress_bar"`
	CloseOnClick    bool     `json:"close_on_click"`
	PauseOnHover    bool     `json:"pause_on_hover"`
	Draggable       bool     `json:"draggable"`
	// MaxVisible caps how many toasts stack at once, 0 means no cap.
	MaxVisible int `json:"max_visible"`
}

func (t ToastOptions) Valid() error {
	var errs []error

	switch t.Position {
	case PositionTopRight, PositionTopCenter, PositionTopLeft, PositionBottomRight, PositionBottomCenter, PositionBottomLeft:
		// okay
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownPosition, t.Position))
	}

	if t.AutoCloseMS <= 0 {
		errs = append(errs, ErrAutoCloseTooLow)
	}

	if t.MaxVisible < 0 {
		errs = append(errs, ErrMaxVisibleNegative)
	}

	if len(errs) != 0 {
		return fmt.Errorf("config: toast options are not valid:\n%w", errors.Join(errs...))
	}

	return nil
}

type Messages struct {
	EmptyInput string `json:"empty_input"`
	Copied     string `json:"copied"`
}

func (m Messages) Valid() error {
	var errs []error

	if m.EmptyInput == "" {
		errs = append(errs, ErrMissingEmptyMessage)
	}

	if m.Copied == "" {
		errs = append(errs, ErrMissingCopiedMessage)
	}

	if len(errs) != 0 {
		return fmt.Errorf("config: messages are not valid:\n%w", errors.Join(errs...))
	}

	return nil
}

type Config struct {
	Toasts   ToastOptions `json:"toasts"`
	Messages Messages     `json:"messages"`
}

func (c Config) Valid() error {
	var errs []error

	if err := c.Toasts.Valid(); err != nil {
		errs = append(errs, err)
	}

	if err := c.Messages.Valid(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) != 0 {
		return fmt.Errorf("config is not valid:\n%w", errors.Join(errs...))
	}

	return nil
}
