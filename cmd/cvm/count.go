package main

import (
	"bufio"
	"crypto/rand"
	"fmt"
	"io"
	"math"
	mrand "math/rand/v2"
	"os"
	"strings"

	"github.com/golang/snappy"
	"github.com/lytics/cvm"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Max token size for a single line or word.
const maxTokenSize = 1 << 20

type counter struct {
	capacity int
	seed     uint64
	words    bool
	snappy   bool
	exact    bool

	logger *zap.Logger
	out    io.Writer
}

// NewCommand returns the root command. Every flag can also be set from a CVM_ environment
// variable, e.g. CVM_CAPACITY=5000.
func NewCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("cvm")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "cvm [file...]",
		Short: "Estimate the number of distinct lines in the input",
		Long: `Estimate the number of distinct lines (or words, with --words) in the named
files, or in stdin when no file or "-" is given. Memory is bounded by --capacity.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), v.GetInt("verbose"))
			defer logger.Sync()

			c := &counter{
				capacity: v.GetInt("capacity"),
				seed:     v.GetUint64("seed"),
				words:    v.GetBool("words"),
				snappy:   v.GetBool("snappy"),
				exact:    v.GetBool("exact"),
				logger:   logger,
				out:      cmd.OutOrStdout(),
			}
			if len(args) == 0 {
				args = []string{"-"}
			}
			return c.Run(cmd.InOrStdin(), args)
		},
	}

	flags := cmd.Flags()
	flags.Int("capacity", 1000, "Maximum number of sampled items; larger is more accurate.")
	flags.Uint64("seed", 0, "Seed for reproducible runs. 0 draws from the system entropy pool.")
	flags.Bool("words", false, "Count whitespace separated words instead of lines.")
	flags.Bool("snappy", false, "Input is a snappy framed stream.")
	flags.Bool("exact", false, "Also count exactly and report the relative error.")
	flags.CountP("verbose", "v", "Log a summary (-v) and every thinning round (-vv).")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	return cmd
}

func newLogger(w io.Writer, verbosity int) *zap.Logger {
	level := zapcore.WarnLevel
	switch {
	case verbosity >= 2:
		level = zapcore.DebugLevel
	case verbosity == 1:
		level = zapcore.InfoLevel
	}

	config := zap.NewDevelopmentEncoderConfig()
	config.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(config), zapcore.AddSync(w), level)
	return zap.New(core)
}

func (c *counter) source() cvm.Source {
	if c.seed == 0 {
		return cvm.FromReader(rand.Reader)
	}
	return cvm.FromRand(mrand.NewPCG(c.seed, c.seed))
}

// Run feeds every token of the named inputs through one estimator and prints the estimate.
func (c *counter) Run(stdin io.Reader, paths []string) error {
	est, err := cvm.New[string](c.capacity, cvm.WithLogger(c.logger))
	if err != nil {
		return err
	}
	src := c.source()

	var exact map[string]struct{}
	if c.exact {
		exact = make(map[string]struct{})
	}

	var tokens int64
	for _, path := range paths {
		n, err := c.consume(stdin, path, func(tok string) error {
			if exact != nil {
				exact[tok] = struct{}{}
			}
			return est.Insert(tok, src)
		})
		tokens += n
		if err != nil {
			return err
		}
	}

	count := est.Count()
	c.logger.Info("estimate complete",
		zap.Int64("tokens", tokens),
		zap.Int("capacity", est.Capacity()),
		zap.Uint("round", est.Round()),
		zap.Int("sampled", est.SampleSize()),
		zap.Float64("estimate", count))

	fmt.Fprintf(c.out, "estimate\t%.0f\n", count)
	if exact != nil {
		n := float64(len(exact))
		relErr := 0.0
		if n > 0 {
			relErr = math.Abs(count-n) / n
		}
		fmt.Fprintf(c.out, "exact\t%d\n", len(exact))
		fmt.Fprintf(c.out, "error\t%.2f%%\n", relErr*100)
	}
	return nil
}

// consume calls fn for every token of one input and returns how many it saw.
func (c *counter) consume(stdin io.Reader, path string, fn func(string) error) (int64, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		r = f
	}
	if c.snappy {
		r = snappy.NewReader(r)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxTokenSize)
	if c.words {
		scanner.Split(bufio.ScanWords)
	}

	var n int64
	for scanner.Scan() {
		if err := fn(scanner.Text()); err != nil {
			return n, err
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, errors.Wrapf(err, "reading %s", path)
	}
	c.logger.Debug("input consumed", zap.String("path", path), zap.Int64("tokens", n))
	return n, nil
}
