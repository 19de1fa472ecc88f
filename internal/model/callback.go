package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback token wire format
const (
	// ActionDownload is the only action understood by version 1 tokens
	ActionDownload = "dl"

	TokenSeparator  = ":"
	TokenFieldCount = 4

	// MaxTokenBytes is the largest payload the messaging transport accepts
	MaxTokenBytes = 64
)

// CallbackToken is the payload attached to a quality button
type CallbackToken struct {
	Action      string
	Platform    string
	EncodingRef string
	OwnerID     int64
}

// NewDownloadToken builds a token for choosing ref on behalf of owner
func NewDownloadToken(platform, ref string, owner int64) CallbackToken {
	return CallbackToken{
		Action:      ActionDownload,
		Platform:    platform,
		EncodingRef: ref,
		OwnerID:     owner,
	}
}

// Encode serializes the token, rejecting values that would not round-trip
func (t CallbackToken) Encode() (string, error) {
	fields := []struct{ name, value string }{
		{"action", t.Action},
		{"platform", t.Platform},
		{"encoding", t.EncodingRef},
	}
	for _, f := range fields {
		if f.value == "" {
			return "", fmt.Errorf("%w: empty %s", ErrMalformedToken, f.name)
		}
		if strings.Contains(f.value, TokenSeparator) {
			return "", fmt.Errorf("%w: %s contains separator", ErrMalformedToken, f.name)
		}
	}

	data := strings.Join([]string{
		t.Action,
		t.Platform,
		t.EncodingRef,
		strconv.FormatInt(t.OwnerID, 10),
	}, TokenSeparator)

	if len(data) > MaxTokenBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrMalformedToken, len(data), MaxTokenBytes)
	}
	return data, nil
}

// ParseCallbackToken decodes a payload, requiring exactly four fields and a
// known action
func ParseCallbackToken(data string) (CallbackToken, error) {
	parts := strings.Split(data, TokenSeparator)
	if len(parts) != TokenFieldCount {
		return CallbackToken{}, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedToken, TokenFieldCount, len(parts))
	}

	if parts[0] != ActionDownload {
		return CallbackToken{}, fmt.Errorf("%w: unknown action %q", ErrMalformedToken, parts[0])
	}
	if parts[1] == "" || parts[2] == "" {
		return CallbackToken{}, fmt.Errorf("%w: empty field", ErrMalformedToken)
	}

	owner, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return CallbackToken{}, fmt.Errorf("%w: bad owner id: %v", ErrMalformedToken, err)
	}

	return CallbackToken{
		Action:      parts[0],
		Platform:    parts[1],
		EncodingRef: parts[2],
		OwnerID:     owner,
	}, nil
}
