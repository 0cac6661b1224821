package internal

import "github.com/starford/stickies/internal/window"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	toolkit window.Toolkit
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithToolkit replaces the SSE shell toolkit with an in-process one. A
// toolkit with an Attach(func(window.Event)) method is handed the
// controller's notification entry point.
func WithToolkit(tk window.Toolkit) Option {
	return func(a *application) {
		a.toolkit = tk
	}
}
