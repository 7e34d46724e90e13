package main

import (
	"bufio"
	"io"
	"sync"
)

// lineReader hands out stdin lines one at a time. A single goroutine owns
// the scanner so a prompt and the watch loop never read concurrently.
type lineReader struct {
	once  sync.Once
	src   io.Reader
	lines chan string
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{src: r, lines: make(chan string)}
}

func (l *lineReader) start() {
	l.once.Do(func() {
		go func() {
			defer close(l.lines)
			scanner := bufio.NewScanner(l.src)
			for scanner.Scan() {
				l.lines <- scanner.Text()
			}
		}()
	})
}

// Next blocks for one line. ok is false at end of input.
func (l *lineReader) Next() (string, bool) {
	l.start()
	line, ok := <-l.lines
	return line, ok
}

// Lines exposes the stream for select loops.
func (l *lineReader) Lines() <-chan string {
	l.start()
	return l.lines
}
