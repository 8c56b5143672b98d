package main

import (
	"context"

	mdocx "github.com/sfu-bigdata/go-mdocx"
)

// CLIConverter is the interface for the conversion service.
type CLIConverter interface {
	Convert(ctx context.Context, input mdocx.Input) (*mdocx.ConvertResult, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*mdocx.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (CLIConverter, error)
	Release(CLIConverter)
	Size() int
	Close() error
}

// converterPool adapts mdocx.ConverterPool to Pool.
type converterPool struct {
	pool *mdocx.ConverterPool
}

// Compile-time check that converterPool implements Pool.
var _ Pool = (*converterPool)(nil)

func newConverterPool(size int, opts ...mdocx.Option) *converterPool {
	return &converterPool{pool: mdocx.NewConverterPool(size, opts...)}
}

func (p *converterPool) Acquire() (CLIConverter, error) {
	conv, err := p.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (p *converterPool) Release(c CLIConverter) {
	if conv, ok := c.(*mdocx.Converter); ok {
		p.pool.Release(conv)
	}
}

func (p *converterPool) Size() int    { return p.pool.Size() }
func (p *converterPool) Close() error { return p.pool.Close() }
