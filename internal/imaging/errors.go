package imaging

import "errors"

var (
	// ErrHTMLInsteadOfImage is returned when the image URL serves an HTML page.
	ErrHTMLInsteadOfImage = errors.New("HTML returned instead of an image")

	// ErrUnexpectedStatus is returned when the image request does not answer 200.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrNotHTTPURL is returned for image URLs that are not http(s).
	ErrNotHTTPURL = errors.New("image URL is not http(s)")

	// ErrImageTooLarge is returned when the image exceeds the size limit.
	ErrImageTooLarge = errors.New("image too large")
)
