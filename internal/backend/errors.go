package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"
)

// Kind is the error taxonomy every backend failure is mapped to.
type Kind string

const (
	KindAuthentication Kind = "AUTHENTICATION"
	KindValidation     Kind = "VALIDATION"
	KindConflict       Kind = "CONFLICT"
	KindNotFound       Kind = "NOT_FOUND"
	KindVisibility     Kind = "VISIBILITY"
	KindTransport      Kind = "TRANSPORT"
	KindUnknown        Kind = "UNKNOWN"
)

// Reason refines a Kind when the backend signals a specific condition.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonAlreadySubmitted    Reason = "ALREADY_SUBMITTED"
	ReasonInsufficientTickets Reason = "INSUFFICIENT_TICKETS"
	ReasonRankingHidden       Reason = "RANKING_HIDDEN"
)

const (
	// alreadySubmittedMarker is the only signal the backend gives for a
	// duplicate submission; there is no structured code for it.
	alreadySubmittedMarker = "Ya has enviado"
	// rankingHiddenMessage is the exact error body of a hidden leaderboard.
	rankingHiddenMessage = "Ranking is currently hidden."
)

// Error is the uniform shape of every failure returned by APIClient.
type Error struct {
	Kind    Kind
	Reason  Reason
	Status  int
	Message string
	// Fields holds per-field validation messages, if the backend sent any.
	Fields map[string][]string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("backend ")
	b.WriteString(strings.ToLower(string(e.Kind)))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindUnknown for errors that did not
// come from this package.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}

// ReasonOf returns the Reason of err, if any.
func ReasonOf(err error) Reason {
	var be *Error
	if errors.As(err, &be) {
		return be.Reason
	}
	return ReasonNone
}

// IsAlreadySubmitted reports whether the backend rejected a submission because
// one already exists for the user and event.
func IsAlreadySubmitted(err error) bool {
	return ReasonOf(err) == ReasonAlreadySubmitted
}

// IsRankingHidden reports whether the leaderboard is administratively hidden.
func IsRankingHidden(err error) bool {
	return ReasonOf(err) == ReasonRankingHidden
}

// IsInsufficientTickets reports whether a ticket spend was refused.
func IsInsufficientTickets(err error) bool {
	return ReasonOf(err) == ReasonInsufficientTickets
}

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	var be *Error
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// classifyMessage is the single place where backend message text is
// interpreted.
func classifyMessage(msg string) Reason {
	switch {
	case strings.Contains(msg, alreadySubmittedMarker):
		return ReasonAlreadySubmitted
	case strings.TrimSpace(msg) == rankingHiddenMessage:
		return ReasonRankingHidden
	}
	return ReasonNone
}

// newHTTPError builds an Error from a non-2xx response.
func newHTTPError(status int, body []byte) *Error {
	msg, fields := parseErrorBody(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	e := &Error{Status: status, Message: msg, Fields: fields}

	switch reason := classifyMessage(msg); reason {
	case ReasonAlreadySubmitted:
		e.Kind, e.Reason = KindConflict, reason
		return e
	case ReasonRankingHidden:
		e.Kind, e.Reason = KindVisibility, reason
		return e
	}

	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		e.Kind = KindAuthentication
	case status == http.StatusBadRequest:
		e.Kind = KindValidation
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusConflict:
		e.Kind = KindConflict
	default:
		e.Kind = KindUnknown
	}
	return e
}

// maxBodyMessage bounds how much of a non-JSON body becomes the message.
const maxBodyMessage = 200

// parseErrorBody understands {"error": "..."}, {"detail": "..."} and Django
// field maps like {"user_id": ["already taken"]}.
func parseErrorBody(body []byte) (string, map[string][]string) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		if len(trimmed) > maxBodyMessage {
			cut := maxBodyMessage
			for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
				cut--
			}
			trimmed = trimmed[:cut]
		}
		if strings.HasPrefix(trimmed, "<") {
			// HTML error pages carry nothing worth showing.
			return "", nil
		}
		return trimmed, nil
	}

	for _, key := range []string{"error", "detail", "message"} {
		if v, ok := raw[key]; ok {
			var s string
			if json.Unmarshal(v, &s) == nil && s != "" {
				return s, nil
			}
		}
	}

	fields := make(map[string][]string)
	for key, v := range raw {
		var list []string
		if json.Unmarshal(v, &list) == nil {
			fields[key] = list
			continue
		}
		var s string
		if json.Unmarshal(v, &s) == nil {
			fields[key] = []string{s}
		}
	}
	if len(fields) == 0 {
		return "", nil
	}
	return flattenFields(fields), fields
}

func flattenFields(fields map[string][]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, strings.Join(fields[k], ", ")))
	}
	return strings.Join(lines, "\n")
}
