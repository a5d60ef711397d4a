package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
)

// Error codes reported by Parse.
const (
	CodeFileSize       = "LIMIT_FILE_SIZE"
	CodeFileCount      = "LIMIT_FILE_COUNT"
	CodeUnexpectedFile = "LIMIT_UNEXPECTED_FILE"
	CodeFilter         = "FILE_FILTER"
	CodeMalformed      = "MALFORMED_REQUEST"
)

// maxFieldSize caps non-file form values, which are read and discarded.
const maxFieldSize = 1 << 20

// Error is a client-side upload violation. Its message is safe to return
// to the caller verbatim.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsError reports whether err is an upload violation and returns it.
func IsError(err error) (*Error, bool) {
	var uploadErr *Error
	ok := errors.As(err, &uploadErr)
	return uploadErr, ok
}

// File is one accepted upload held in memory.
type File struct {
	Name string
	Data []byte
}

// Policy describes which files a multipart request may carry.
type Policy struct {
	// Field is the only form field allowed to carry files.
	Field string
	// MaxFiles caps the number of files in the request.
	MaxFiles int
	// MaxFileSize caps each file in bytes.
	MaxFileSize int64
	// Pattern must match each original filename.
	Pattern *regexp.Regexp
	// FilterMessage is reported when Pattern rejects a file.
	FilterMessage string
}

// TaskImages accepts up to two .jpg, .jpeg, .png or .bmp files of at most
// 1,000,000 bytes each under "uploads".
var TaskImages = Policy{
	Field:         "uploads",
	MaxFiles:      2,
	MaxFileSize:   1_000_000,
	Pattern:       regexp.MustCompile(`\.(jpg|jpeg|png|bmp)$`),
	FilterMessage: "Please Upload an image file",
}

// Avatar accepts one .jpg, .jpeg or .png file of at most 1,000,000 bytes
// under "avatar".
var Avatar = Policy{
	Field:         "avatar",
	MaxFiles:      1,
	MaxFileSize:   1_000_000,
	Pattern:       regexp.MustCompile(`\.(jpg|jpeg|png)$`),
	FilterMessage: "Please upload an image",
}

// Parse streams the multipart body of r and returns the accepted files in
// the order they appear. The first violation aborts parsing and is returned
// as an *Error; anything else is an I/O failure.
func (p Policy) Parse(w http.ResponseWriter, r *http.Request) ([]File, error) {
	// Headers and boundaries need some room beyond the file payloads.
	r.Body = http.MaxBytesReader(w, r.Body, int64(p.MaxFiles+1)*p.MaxFileSize+maxFieldSize)

	reader, err := r.MultipartReader()
	if err != nil {
		return nil, &Error{Code: CodeMalformed, Message: "Expected multipart form data"}
	}

	files := make([]File, 0, p.MaxFiles)
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return nil, p.mapReadError(err)
		}

		file, err := p.readPart(part, len(files))
		_ = part.Close()
		if err != nil {
			return nil, err
		}
		if file != nil {
			files = append(files, *file)
		}
	}
}

// readPart returns nil for non-file parts, which are drained and ignored.
func (p Policy) readPart(part *multipart.Part, accepted int) (*File, error) {
	name := part.FileName()
	if name == "" {
		if _, err := io.Copy(io.Discard, io.LimitReader(part, maxFieldSize)); err != nil {
			return nil, p.mapReadError(err)
		}
		return nil, nil
	}

	if accepted >= p.MaxFiles {
		return nil, &Error{Code: CodeFileCount, Message: "Too many files"}
	}
	if part.FormName() != p.Field {
		return nil, &Error{Code: CodeUnexpectedFile, Message: "Unexpected field"}
	}
	if p.Pattern != nil && !p.Pattern.MatchString(name) {
		return nil, &Error{Code: CodeFilter, Message: p.FilterMessage}
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(part, p.MaxFileSize+1))
	if err != nil {
		return nil, p.mapReadError(err)
	}
	if n > p.MaxFileSize {
		return nil, &Error{Code: CodeFileSize, Message: "File too large"}
	}

	return &File{Name: name, Data: buf.Bytes()}, nil
}

func (p Policy) mapReadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &Error{Code: CodeFileSize, Message: "File too large"}
	}
	return fmt.Errorf("failed to read multipart body: %w", err)
}

// Contents returns the raw bytes of files in order.
func Contents(files []File) [][]byte {
	out := make([][]byte, len(files))
	for i, f := range files {
		out[i] = f.Data
	}
	return out
}
