// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
	"cloudeng.io/errors"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cosnicolaou/lzxd"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	"github.com/schollz/progressbar/v2"
	"golang.org/x/crypto/ssh/terminal"
)

// CommonFlags carries the flags every subcommand needs: the window size
// the input was encoded with (the framing format has no way to
// self-describe it, unlike a CAB/XNB container header) and a verbosity
// switch.
type CommonFlags struct {
	WindowSize string `subcmd:"window-size,2048KB,'the LZXD sliding window size the input was encoded with: 32KB, 64KB, 128KB, 256KB, 512KB, 1024KB or 2048KB'"`
	Verbose    bool   `subcmd:"verbose,false,verbose debug/trace information"`
}

func (c *CommonFlags) windowSize() (lzxd.WindowSize, error) {
	for ws := lzxd.KB32; ws <= lzxd.KB2048; ws++ {
		if ws.String() == c.WindowSize {
			return ws, nil
		}
	}
	return 0, fmt.Errorf("lzxdcat: unrecognized window size %q", c.WindowSize)
}

type catFlags struct {
	CommonFlags
}

type unpackFlags struct {
	CommonFlags
	ProgressBar bool   `subcmd:"progress,true,display a progress bar"`
	OutputFile  string `subcmd:"output,,'output file or s3 path, omit for stdout'"`
}

type inspectFlags struct{}

var cmdSet *subcmd.CommandSet

func init() {
	catCmd := subcmd.NewCommand("cat",
		subcmd.MustRegisterFlagStruct(&catFlags{}, nil, nil),
		cat, subcmd.AtLeastNArguments(0))
	catCmd.Document(`decompress lzxdcat-framed files or stdin to stdout. Files may be local, on S3 or a URL.`)

	unpackCmd := subcmd.NewCommand("unpack",
		subcmd.MustRegisterFlagStruct(&unpackFlags{}, nil, nil),
		unpack, subcmd.ExactlyNumArguments(1))
	unpackCmd.Document(`decompress a single lzxdcat-framed file.`)

	inspectCmd := subcmd.NewCommand("inspect",
		subcmd.MustRegisterFlagStruct(&inspectFlags{}, nil, nil),
		inspect, subcmd.AtLeastNArguments(1))
	inspectCmd.Document(`print the chunk table of lzxdcat-framed files without decompressing them.`)

	cmdSet = subcmd.NewCommandSet(catCmd, unpackCmd, inspectCmd)
	cmdSet.Document(`decompress and inspect lzxd streams framed for this command. Files may be local, on S3 or a URL.`)

	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(
			s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
}

func progressBarLoop(ctx context.Context, wr io.Writer, ch chan Progress, size int64) {
	bar := progressbar.NewOptions64(size,
		progressbar.OptionSetBytes64(size),
		progressbar.OptionSetWriter(wr),
		progressbar.OptionSetPredictTime(true))
	bar.RenderBlank()
	next := 1
	for {
		select {
		case p, ok := <-ch:
			if !ok {
				fmt.Fprintf(wr, "\n")
				return
			}
			bar.Add64(p.CompressedBytes)
			if p.Chunk != next {
				log.Fatalf("out of sequence chunk %#v\n", p)
			}
			next++
		case <-ctx.Done():
			return
		}
	}
}

func openFileOrURL(ctx context.Context, name string) (io.Reader, func(context.Context) error, error) {
	f, err := file.Open(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return f.Reader(ctx), f.Close, nil
}

func createFile(ctx context.Context, name string) (io.Writer, func(context.Context) error, error) {
	if len(name) == 0 {
		return os.Stdout, func(context.Context) error { return nil }, nil
	}
	f, err := file.Create(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return f.Writer(ctx), f.Close, nil
}

func main() {
	cmdSet.MustDispatch(context.Background())
}

func cat(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cl := values.(*catFlags)
	cmdutil.HandleSignals(cancel, os.Interrupt)

	ws, err := cl.windowSize()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return decompressFramed(ctx, os.Stdin, os.Stdout, ws, nil)
	}

	errs := &errors.M{}
	for _, inputFile := range args {
		rd, readerCleanup, err := openFileOrURL(ctx, inputFile)
		if err != nil {
			errs.Append(err)
			continue
		}
		errs.Append(decompressFramed(ctx, rd, os.Stdout, ws, nil))
		errs.Append(readerCleanup(ctx))
	}
	return errs.Err()
}

func unpack(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	cmdutil.HandleSignals(cancel, os.Interrupt)
	cl := values.(*unpackFlags)

	ws, err := cl.windowSize()
	if err != nil {
		return err
	}

	rd, readerCleanup, err := openFileOrURL(ctx, args[0])
	if err != nil {
		return err
	}
	defer readerCleanup(ctx)

	wr, writerCleanup, err := createFile(ctx, cl.OutputFile)
	if err != nil {
		return err
	}

	var progressCh chan Progress
	isTTY := terminal.IsTerminal(int(os.Stdout.Fd()))
	var progressWg sync.WaitGroup
	if cl.ProgressBar && (len(cl.OutputFile) > 0 || !isTTY) {
		progressCh = make(chan Progress, 16)
		progressWr := os.Stdout
		if !isTTY {
			progressWr = os.Stderr
		}
		progressWg.Add(1)
		go func() {
			defer progressWg.Done()
			// size is unknown up front without a second pass over the
			// framing header, so the bar renders in indeterminate mode.
			progressBarLoop(ctx, progressWr, progressCh, 0)
		}()
	}

	errs := &errors.M{}
	errs.Append(decompressFramed(ctx, rd, wr, ws, progressCh))
	errs.Append(writerCleanup(ctx))

	if progressCh != nil {
		close(progressCh)
		progressWg.Wait()
	}

	return errs.Err()
}

func inspect(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	cmdutil.HandleSignals(cancel, os.Interrupt)
	errs := &errors.M{}
	for _, arg := range args {
		rd, readerCleanup, err := openFileOrURL(ctx, arg)
		if err != nil {
			errs.Append(err)
			continue
		}
		errs.Append(inspectFramed(os.Stdout, arg, rd))
		errs.Append(readerCleanup(ctx))
	}
	return errs.Err()
}
