package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// ErrBinary is returned when a file does not hold text
var ErrBinary = errors.New("file is not text")

// decodeText returns data as UTF-8. Files in another text encoding are
// converted using the detected charset.
func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	mtype := mimetype.Detect(data)
	if !isText(mtype.String()) {
		return "", fmt.Errorf("%w (%s)", ErrBinary, mtype.String())
	}

	label := detectCharset(data)
	r, err := charset.NewReader(bytes.NewReader(data), label)
	if err != nil {
		return "", fmt.Errorf("unsupported charset %s: %w", label, err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s text: %w", label, err)
	}
	return string(out), nil
}

func isText(mime string) bool {
	return strings.HasPrefix(mime, "text/") ||
		mime == "application/json" ||
		mime == "application/xml" ||
		mime == "application/javascript"
}

// detectCharset names the most likely encoding of data
func detectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "windows-1252"
	}
	return strings.ToLower(result.Charset)
}
