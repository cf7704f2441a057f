// Copyright 2020 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package io offers serialization interfaces and checks for polycommit objects.
package io

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
)

// WriterRawTo is the interface that wraps the WriteRawTo method.
//
// WriteRawTo writes data to w until there's no more data to write or
// when an error occurs. The return value n is the number of bytes
// written. Any error encountered during the write is also returned.
//
// WriteRawTo will not compress the data (as opposed to WriteTo)
type WriterRawTo interface {
	WriteRawTo(w io.Writer) (n int64, err error)
}

// UnsafeReaderFrom is the interface that wraps the UnsafeReadFrom method.
//
// UnsafeReadFrom reads data from reader but doesn't perform any checks, such as
// subgroup checks for elliptic curves points for example.
type UnsafeReaderFrom interface {
	UnsafeReadFrom(r io.Reader) (int64, error)
}

// RoundTripCheck serializes from and reconstructs it into the object builder
// returns, checking that the reconstruction matches the original and that the
// byte counts written and read agree. The io.WriterTo / io.ReaderFrom pair is
// checked when implemented, as are the raw and unsafe variants.
func RoundTripCheck(from any, builder func() any) error {
	var buf bytes.Buffer

	check := func(written int64) error {
		if r, ok := builder().(io.ReaderFrom); ok {
			read, err := r.ReadFrom(bytes.NewReader(buf.Bytes()))
			if err != nil {
				return err
			}
			if !reflect.DeepEqual(from, r) {
				return fmt.Errorf("reconstructed object don't match original (ReadFrom)")
			}
			if written != read {
				return fmt.Errorf("bytes written (%d) / read (%d) don't match", written, read)
			}
		}

		if r, ok := builder().(UnsafeReaderFrom); ok {
			read, err := r.UnsafeReadFrom(bytes.NewReader(buf.Bytes()))
			if err != nil {
				return err
			}
			if !reflect.DeepEqual(from, r) {
				return fmt.Errorf("reconstructed object don't match original (UnsafeReadFrom)")
			}
			if written != read {
				return fmt.Errorf("bytes written (%d) / read (%d) don't match", written, read)
			}
		}
		return nil
	}

	if w, ok := from.(io.WriterTo); ok {
		written, err := w.WriteTo(&buf)
		if err != nil {
			return err
		}
		if err := check(written); err != nil {
			return err
		}
	}

	buf.Reset()

	if w, ok := from.(WriterRawTo); ok {
		written, err := w.WriteRawTo(&buf)
		if err != nil {
			return err
		}
		if err := check(written); err != nil {
			return err
		}
	}

	return nil
}
