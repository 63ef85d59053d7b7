package source

import "fmt"

// FetchError is returned when the source tree could not be retrieved.
type FetchError struct {
	URL string
	// Status is the remote status text, empty for transport or local
	// copy failures.
	Status string
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != "":
		return fmt.Sprintf("fetching %s: %s", e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	default:
		return "fetching " + e.URL
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractError is returned when the downloaded archive could not be
// unpacked.
type ExtractError struct {
	Archive string
	Err     error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Archive, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }
