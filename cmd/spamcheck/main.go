package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	flag "github.com/spf13/pflag"

	"github.com/crimson-sun/spamcheck/internal/config"
	"github.com/crimson-sun/spamcheck/internal/logging"
	"github.com/crimson-sun/spamcheck/internal/output"
	"github.com/crimson-sun/spamcheck/internal/output/stdout"
	"github.com/crimson-sun/spamcheck/internal/runner"
)

// Exit codes.
const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitArtifact  = 3
	exitInference = 4
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

const usageText = `Usage: spamcheck [flags] <email-text>

Classify one text with a pretrained vectorizer and classifier and print the
predicted label as a JSON integer (for example 1 = spam, 0 = not spam).

Use -- to end flag parsing when the text starts with a dash:

  spamcheck -- "-50% off: free money"

Flags:
`

func run(args []string, outW, errW io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(errW, "spamcheck: %v\n", err)
		return exitFailure
	}

	fs := flag.NewFlagSet("spamcheck", flag.ContinueOnError)
	fs.SetOutput(errW)
	var (
		a           = cfg.Artifacts
		logLevel    string
		logFormat   string
		showVersion bool
	)
	fs.StringVarP(&a.VectorizerPath, "vectorizer", "V", a.VectorizerPath, "Vectorizer artifact path (.json, .yaml)")
	fs.StringVarP(&a.ClassifierPath, "classifier", "m", a.ClassifierPath, "Classifier artifact path (.json, .yaml, .safetensors, .onnx)")
	fs.StringVar(&a.VectorizerSHA256, "vectorizer-sha256", a.VectorizerSHA256, "Expected SHA-256 of the vectorizer artifact")
	fs.StringVar(&a.ClassifierSHA256, "classifier-sha256", a.ClassifierSHA256, "Expected SHA-256 of the classifier artifact")
	fs.StringVar(&a.ONNXRuntimeLib, "onnxruntime-lib", a.ONNXRuntimeLib, "ONNX Runtime shared library path")
	fs.StringVar(&logLevel, "log-level", cfg.Log.Level, "Log level: debug, info, warn, error (default warn)")
	fs.StringVar(&logFormat, "log-format", cfg.Log.Format, "Log format: text, json")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		fmt.Fprint(errW, usageText)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if showVersion {
		printVersion(outW)
		return exitOK
	}

	if logLevel == "" {
		logLevel = "warn"
	}
	logging.Init(errW, logFormat, logging.ParseLevel(logLevel))

	if fs.NArg() != 1 {
		fmt.Fprintf(errW, "spamcheck: expected exactly one text argument, got %d\n\n", fs.NArg())
		fs.Usage()
		return exitUsage
	}

	r, err := runner.Load(runner.Paths{
		Vectorizer:       a.VectorizerPath,
		Classifier:       a.ClassifierPath,
		VectorizerSHA256: a.VectorizerSHA256,
		ClassifierSHA256: a.ClassifierSHA256,
		ONNXRuntimeLib:   a.ONNXRuntimeLib,
	})
	if err != nil {
		return fail(errW, err)
	}
	defer r.Close()

	pred, err := r.Predict(fs.Arg(0))
	if err != nil {
		return fail(errW, err)
	}

	var out output.Output = stdout.New(outW)
	defer out.Close()
	if err := out.Write(context.Background(), pred); err != nil {
		return fail(errW, err)
	}
	return exitOK
}

// fail reports err on stderr and maps it to an exit code.
func fail(errW io.Writer, err error) int {
	fmt.Fprintf(errW, "spamcheck: %v\n", err)
	switch {
	case errors.Is(err, runner.ErrArtifactLoad):
		return exitArtifact
	case errors.Is(err, runner.ErrInference):
		return exitInference
	default:
		return exitFailure
	}
}

func printVersion(w io.Writer) {
	version := "(devel)"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	fmt.Fprintf(w, "spamcheck %s\n", version)
}
