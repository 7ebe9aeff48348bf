package document

import "fmt"

// UnsupportedFormatError is returned for a file whose extension is not routable.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return "unsupported file format: no extension"
	}
	return fmt.Sprintf("unsupported file format: %s", e.Ext)
}

// ScrapeError means the source file could not be read or is structurally corrupt.
type ScrapeError struct {
	Path string
	Err  error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape %s: %v", e.Path, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// OCRError means an image could not be opened, decoded or recognized.
type OCRError struct {
	Image string
	Err   error
}

func (e *OCRError) Error() string {
	return fmt.Sprintf("ocr %s: %v", e.Image, e.Err)
}

func (e *OCRError) Unwrap() error { return e.Err }

// AgentError is an internal failure of an enabled analysis capability.
type AgentError struct {
	Agent string
	Err   error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent %s: %v", e.Agent, e.Err)
}

func (e *AgentError) Unwrap() error { return e.Err }

// ConfigurationError reports a missing or invalid setting. It should surface at startup.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "configuration: " + e.Reason
	}
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}
