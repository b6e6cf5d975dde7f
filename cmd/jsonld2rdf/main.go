// Copyright 2015-2017 Piprate Limited
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command jsonld2rdf streams a JSON-LD document to N-Quads. It exists to
// demonstrate the ld.QuadSink and ld.ContextLoader contracts end to end;
// the N-Quads writer itself lives in internal/nquads, not in the core ld
// package, which never writes text. Remote contexts are fetched by ld's
// default ContextLoader (HTTP(S) or local files).
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepend-io/jsonld-rdf/internal/nquads"
	"github.com/deepend-io/jsonld-rdf/ld"
)

func main() {
	var (
		base           string
		expandContext  string
		generalizedRdf bool
		output         string
	)

	rootCmd := &cobra.Command{
		Use:           "jsonld2rdf [flags] <file.jsonld>",
		Short:         "Stream a JSON-LD document to N-Quads",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(args, base, expandContext, generalizedRdf, output)
		},
	}

	rootCmd.Flags().StringVar(&base, "base", "", "base IRI to resolve relative IRIs against")
	rootCmd.Flags().StringVar(&expandContext, "expand-context", "", "path or IRI of a context to apply before expansion")
	rootCmd.Flags().BoolVar(&generalizedRdf, "generalized-rdf", false, "emit blank node predicates instead of dropping those triples")
	rootCmd.Flags().StringVarP(&output, "output", "o", "-", "output file, or - for stdout")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(args []string, base, expandContext string, generalizedRdf bool, output string) error {
	data, err := readInput(args)
	if err != nil {
		return err
	}

	opts := ld.NewOptions(base)
	opts.ProduceGeneralizedRdf = generalizedRdf
	if expandContext != "" {
		opts.ExpandContext = expandContext
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	sink := nquads.NewWriter(out)
	transducer := ld.NewTransducer(opts)
	if err := transducer.ToRDFFromBytes(data, sink); err != nil {
		return fmt.Errorf("convert to RDF: %w", err)
	}

	return sink.Close()
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return data, nil
}

// outputCloser lets stdout and a real file share a Close path without
// stdout ever actually being closed.
type outputCloser struct {
	io.Writer
	file *os.File
}

func (o outputCloser) Close() error {
	if o.file == nil {
		return nil
	}
	return o.file.Close()
}

func openOutput(path string) (outputCloser, error) {
	if path == "" || path == "-" {
		return outputCloser{Writer: os.Stdout}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return outputCloser{}, fmt.Errorf("create %s: %w", path, err)
	}
	return outputCloser{Writer: file, file: file}, nil
}
