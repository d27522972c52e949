package main

import (
	"fmt"
	"io"
	"log"
	"os"
)

// A Logger prints everything it is given and appends it to log/latest.txt.
// The file of the previous run is kept as log/last.txt.
type Logger struct {
	out  io.Writer
	file *os.File
}

func newLogger(out io.Writer) (*Logger, error) {
	if err := os.MkdirAll("log", 0777); err != nil {
		return nil, err
	}

	os.Rename("log/latest.txt", "log/last.txt")

	f, err := os.OpenFile("log/latest.txt", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}

	return &Logger{out: out, file: f}, nil
}

func (l *Logger) Write(p []byte) (int, error) {
	fmt.Fprint(l.out, string(p))

	return l.file.Write(p)
}

func (l *Logger) Close() error {
	return l.file.Close()
}

// setupLog sends the standard logger through a Logger.
// The returned function restores the previous output.
func setupLog(out io.Writer) (func(), error) {
	l, err := newLogger(out)
	if err != nil {
		return nil, err
	}

	prev := log.Writer()
	log.SetOutput(l)

	return func() {
		log.SetOutput(prev)
		l.Close()
	}, nil
}
