package notify

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"roadside-rescue/internal/client/api"
)

const NetworkErrorMessage = "Network error. Please check your connection."

// Notifier shows short messages to the user.
type Notifier interface {
	Success(msg string)
	Info(msg string)
	Error(msg string)
}

// Terminal writes one line per message.
type Terminal struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

func NewTerminal(out io.Writer, color bool) *Terminal {
	return &Terminal{out: out, color: color}
}

func (t *Terminal) Success(msg string) { t.write("\033[32m", "✔", msg) }
func (t *Terminal) Info(msg string)    { t.write("\033[36m", "•", msg) }
func (t *Terminal) Error(msg string)   { t.write("\033[31m", "✖", msg) }

func (t *Terminal) write(color, mark, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.color {
		fmt.Fprintf(t.out, "%s%s %s\033[0m\n", color, mark, msg)
		return
	}
	fmt.Fprintf(t.out, "%s %s\n", mark, msg)
}

// Message picks what to tell the user about err: the server's detail,
// then a network hint, then fallback.
func Message(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return NetworkErrorMessage
	}
	if errors.Is(err, api.ErrSessionExpired) {
		return api.ErrSessionExpired.Error()
	}
	return fallback
}

// APIError reports err through n.
func APIError(n Notifier, err error, fallback string) {
	n.Error(Message(err, fallback))
}

// Recorder keeps messages in memory.
type Recorder struct {
	mu       sync.Mutex
	Messages []Entry
}

type Entry struct {
	Level string
	Text  string
}

func (r *Recorder) Success(msg string) { r.add("success", msg) }
func (r *Recorder) Info(msg string)    { r.add("info", msg) }
func (r *Recorder) Error(msg string)   { r.add("error", msg) }

func (r *Recorder) add(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, Entry{Level: level, Text: msg})
}

// Last returns the most recent entry, or a zero Entry.
func (r *Recorder) Last() Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Messages) == 0 {
		return Entry{}
	}
	return r.Messages[len(r.Messages)-1]
}
