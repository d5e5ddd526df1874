package config

import (
	"io"
	"time"
)

// Writers receiving the description of the response

// Can be applied multiple times.
// Default value is no writers.
type ExportOption struct {
	W io.Writer
}

func (eo ExportOption) RunOpt() {}

// Configures how long the LTL translator may run.

// Default value is no timeout.
type TranslatorTimeoutOption struct {
	Timeout time.Duration
}

func (tto TranslatorTimeoutOption) RunOpt() {}
