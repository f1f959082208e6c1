// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/xtaci/ecavail"
	"github.com/xtaci/ecavail/archive"
	"github.com/xtaci/ecavail/vectorio"
)

// VERSION is injected by buildflags
var VERSION = "SELFBUILD"

// Config mirrors the command-line flags below so that a run can be
// replayed verbatim from a JSON file via the -c flag.
type Config struct {
	K    int    `json:"k"`
	N    int    `json:"n"`
	In   string `json:"in"`
	Out  string `json:"out"`
	Pack bool   `json:"pack"`
	Log  string `json:"log"`
}

func parseJSONConfig(config *Config, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return json.NewDecoder(file).Decode(config)
}

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "ecctl"
	myApp.Usage = "erasure-coded availability blob encoder/recoverer"
	myApp.Version = VERSION
	myApp.Commands = []cli.Command{
		encodeCommand,
		recoverCommand,
		encodePieceCommand,
		recoverPieceCommand,
		verifyVectorCommand,
	}
	if err := myApp.Run(os.Args); err != nil {
		checkError(err)
	}
}

var profileFlags = []cli.Flag{
	cli.IntFlag{Name: "k", Value: ecavail.BlobK, Usage: "systematic shard count"},
	cli.IntFlag{Name: "n", Value: ecavail.N, Usage: "total shard count"},
	cli.StringFlag{Name: "c", Value: "", Usage: "config from json file, which will override the command from shell"},
	cli.StringFlag{Name: "log", Value: "", Usage: "redirect log output to this file"},
}

var encodeCommand = cli.Command{
	Name:  "encode",
	Usage: "encode a blob file into n chunks",
	Flags: append([]cli.Flag{
		cli.StringFlag{Name: "in", Usage: "input blob file"},
		cli.StringFlag{Name: "out", Usage: "output chunk archive (used with --pack) or directory"},
		cli.BoolFlag{Name: "pack", Usage: "bundle all chunks into a single snappy-compressed archive"},
	}, profileFlags...),
	Action: func(c *cli.Context) error {
		config := Config{
			K:    c.Int("k"),
			N:    c.Int("n"),
			In:   c.String("in"),
			Out:  c.String("out"),
			Pack: c.Bool("pack"),
			Log:  c.String("log"),
		}
		if c.String("c") != "" {
			checkError(parseJSONConfig(&config, c.String("c")))
		}
		redirectLog(config.Log)

		data, err := os.ReadFile(config.In)
		checkError(err)

		engine, err := ecavail.NewEngine(config.K, config.N)
		checkError(err)

		enc, err := engine.EncodeBlob(data)
		checkError(err)
		log.Println("k:", engine.K(), "n:", engine.N(), "pieces:", enc.KPieces, "original length:", enc.OriginalLength)

		if config.Pack {
			f, err := os.Create(config.Out)
			checkError(err)
			defer f.Close()
			checkError(archive.Write(f, enc.Chunks, enc.KPieces, enc.OriginalLength))
			log.Println("wrote archive:", config.Out)
			return nil
		}

		checkError(os.MkdirAll(config.Out, 0755))
		for i, chunk := range enc.Chunks {
			path := fmt.Sprintf("%s/chunk-%04d.bin", config.Out, i)
			checkError(os.WriteFile(path, chunk, 0644))
		}
		log.Println("wrote", len(enc.Chunks), "chunks to", config.Out)
		return nil
	},
}

var recoverCommand = cli.Command{
	Name:  "recover",
	Usage: "recover a blob from a packed chunk archive",
	Flags: append([]cli.Flag{
		cli.StringFlag{Name: "in", Usage: "input chunk archive"},
		cli.StringFlag{Name: "out", Usage: "output blob file"},
	}, profileFlags...),
	Action: func(c *cli.Context) error {
		config := Config{K: c.Int("k"), N: c.Int("n"), In: c.String("in"), Out: c.String("out"), Log: c.String("log")}
		if c.String("c") != "" {
			checkError(parseJSONConfig(&config, c.String("c")))
		}
		redirectLog(config.Log)

		f, err := os.Open(config.In)
		checkError(err)
		defer f.Close()
		chunks, kPieces, originalLength, err := archive.Read(f)
		checkError(err)

		engine, err := ecavail.NewEngine(config.K, config.N)
		checkError(err)

		var shards []ecavail.Shard
		for i, chunk := range chunks {
			if len(chunk) > 0 {
				shards = append(shards, ecavail.Shard{Index: i, Data: chunk})
			}
		}
		if len(shards) < engine.K() {
			color.Red("WARNING: only %d of %d required shards present, recovery will fail", len(shards), engine.K())
		}

		data, err := engine.RecoverBlob(shards, kPieces, originalLength)
		checkError(err)
		checkError(os.WriteFile(config.Out, data, 0644))
		log.Println("recovered", len(data), "bytes to", config.Out)
		return nil
	},
}

var encodePieceCommand = cli.Command{
	Name:  "encode-piece",
	Usage: "encode a single k-word piece into an n-word codeword, word values given on the command line",
	Flags: append([]cli.Flag{
		cli.StringFlag{Name: "words", Usage: "comma-separated list of k 16-bit word values"},
	}, profileFlags...),
	Action: func(c *cli.Context) error {
		config := Config{K: c.Int("k"), N: c.Int("n"), Log: c.String("log")}
		if c.String("c") != "" {
			checkError(parseJSONConfig(&config, c.String("c")))
		}
		redirectLog(config.Log)

		words, err := parseWords(c.String("words"))
		checkError(err)

		engine, err := ecavail.NewEngine(config.K, config.N)
		checkError(err)
		codeword, err := engine.EncodePiece(words)
		checkError(err)
		for i, w := range codeword {
			fmt.Printf("%d:%04x\n", i, w)
		}
		return nil
	},
}

var recoverPieceCommand = cli.Command{
	Name:  "recover-piece",
	Usage: "recover a k-word piece from at least k index:value pairs",
	Flags: append([]cli.Flag{
		cli.StringFlag{Name: "pairs", Usage: "comma-separated list of index:value pairs, e.g. 0:1234,5:abcd"},
	}, profileFlags...),
	Action: func(c *cli.Context) error {
		config := Config{K: c.Int("k"), N: c.Int("n"), Log: c.String("log")}
		if c.String("c") != "" {
			checkError(parseJSONConfig(&config, c.String("c")))
		}
		redirectLog(config.Log)

		pairs, err := parsePairs(c.String("pairs"))
		checkError(err)

		engine, err := ecavail.NewEngine(config.K, config.N)
		checkError(err)
		piece, err := engine.RecoverPiece(pairs)
		checkError(err)
		for i, w := range piece {
			fmt.Printf("%d:%04x\n", i, w)
		}
		return nil
	},
}

var verifyVectorCommand = cli.Command{
	Name:  "verify-vector",
	Usage: "check a conformance test vector against the engine's own encoding",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "in", Usage: "ec-*.json test vector file"},
		cli.IntFlag{Name: "k", Value: ecavail.BlobK, Usage: "systematic shard count"},
		cli.IntFlag{Name: "n", Value: ecavail.N, Usage: "total shard count"},
	},
	Action: func(c *cli.Context) error {
		v, err := vectorio.Load(c.String("in"))
		checkError(err)

		engine, err := ecavail.NewEngine(c.Int("k"), c.Int("n"))
		checkError(err)
		enc, err := engine.EncodeBlob(v.Data)
		checkError(err)

		if len(enc.Chunks) != len(v.Shards) {
			checkError(fmt.Errorf("vector has %d shards, engine produced %d", len(v.Shards), len(enc.Chunks)))
		}
		for i := range enc.Chunks {
			if !bytesEqual(enc.Chunks[i], v.Shards[i]) {
				checkError(fmt.Errorf("shard %d mismatch: got %x, want %x", i, enc.Chunks[i], v.Shards[i]))
			}
		}
		color.Green("vector %s: OK", c.String("in"))
		return nil
	},
}

func checkError(err error) {
	if err != nil {
		log.Printf("%+v\n", err)
		os.Exit(-1)
	}
}

func redirectLog(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	checkError(err)
	log.SetOutput(f)
}

func parseWords(s string) ([]uint16, error) {
	if s == "" {
		return nil, nil
	}
	tokens := strings.Split(s, ",")
	words := make([]uint16, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 16)
		if err != nil {
			return nil, errors.Wrapf(err, "parse word %q", tok)
		}
		words[i] = uint16(v)
	}
	return words, nil
}

func parsePairs(s string) ([]ecavail.IndexValue, error) {
	if s == "" {
		return nil, nil
	}
	tokens := strings.Split(s, ",")
	pairs := make([]ecavail.IndexValue, len(tokens))
	for i, tok := range tokens {
		parts := strings.SplitN(strings.TrimSpace(tok), ":", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("malformed pair %q, want index:value", tok)
		}
		idx, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, errors.Wrapf(err, "parse index in pair %q", tok)
		}
		val, err := strconv.ParseUint(parts[1], 16, 16)
		if err != nil {
			return nil, errors.Wrapf(err, "parse value in pair %q", tok)
		}
		pairs[i] = ecavail.IndexValue{Index: idx, Value: uint16(val)}
	}
	return pairs, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
