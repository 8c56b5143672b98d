package main

import (
	"io"
	"os"
	"time"

	mdocx "github.com/sfu-bigdata/go-mdocx"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, environment lookup and converter creation.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string
	NewPool func(size int, opts ...mdocx.Option) Pool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		NewPool: func(size int, opts ...mdocx.Option) Pool {
			return newConverterPool(size, opts...)
		},
	}
}
