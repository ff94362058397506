// hotmarsh encodes transaction requests described in YAML files into the
// binary form a node accepts, signing them when a private key is given.
//
//	hotmarsh encode -r request.yaml [-k key.pem] [--format json|yaml|cbor|base64]
//	hotmarsh decode -i envelope.json [--format json|yaml|cbor] [--public-key KEY]
package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/oy3o/hotmarsh/internal/reqfile"
	"github.com/oy3o/hotmarsh/requests"
	"github.com/oy3o/hotmarsh/signer"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: hotmarsh encode|decode [flags]")
	}
	switch args[0] {
	case "encode":
		return runEncode(args[1:], stdout, stderr)
	case "decode":
		return runDecode(args[1:], stdin, stdout, stderr)
	}
	return errors.Errorf("unknown command %q", args[0])
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runEncode(args []string, stdout, stderr io.Writer) error {
	var requestPath, keyPath, algorithm, format string
	var verbose bool

	flagSet := pflag.NewFlagSet("hotmarsh encode", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&requestPath, "request", "r", "", "YAML request file")
	flagSet.StringVarP(&keyPath, "key", "k", "", "private key file, base64 or PEM")
	flagSet.StringVar(&algorithm, "algorithm", string(signer.ED25519), "signature algorithm")
	flagSet.StringVar(&format, "format", "json", "output format: json, yaml, cbor or base64")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if requestPath == "" {
		return errors.New("--request is required")
	}
	logger := newLogger(stderr, verbose)

	req, err := reqfile.Load(requestPath)
	if err != nil {
		return err
	}
	logger.Debug("loaded request", "file", requestPath, "kind", req.Kind())

	env, err := envelope(req, keyPath, algorithm, logger)
	if err != nil {
		return err
	}
	logger.Debug("encoded request", "kind", env.Kind, "bytes", len(env.Request), "signed", env.Signature != "")
	return writeEnvelope(stdout, env, format)
}

func envelope(req requests.Request, keyPath, algorithm string, logger *slog.Logger) (requests.SignedRequest, error) {
	signable, ok := req.(requests.Signable)
	if keyPath == "" || !ok {
		if keyPath != "" {
			logger.Warn("request kind is not signed, ignoring key", "kind", req.Kind())
		} else if ok {
			logger.Warn("no key given, request left unsigned", "kind", req.Kind())
		}
		return requests.Envelope(req)
	}
	alg, err := signer.ParseAlgorithm(algorithm)
	if err != nil {
		return requests.SignedRequest{}, err
	}
	text, err := os.ReadFile(keyPath)
	if err != nil {
		return requests.SignedRequest{}, errors.Wrap(err, "reading key")
	}
	s, err := signer.New(alg, string(text))
	if err != nil {
		return requests.SignedRequest{}, errors.Wrap(err, keyPath)
	}
	logger.Debug("signing", "algorithm", alg, "public_key", s.PublicKey())
	return requests.Sign(signable, s)
}

func writeEnvelope(w io.Writer, env requests.SignedRequest, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(env); err != nil {
			return err
		}
		return enc.Close()
	case "cbor":
		return cbor.NewEncoder(w).Encode(env)
	case "base64":
		if _, err := fmt.Fprintln(w, base64.StdEncoding.EncodeToString(env.Request)); err != nil {
			return err
		}
		if env.Signature != "" {
			_, err := fmt.Fprintln(w, env.Signature)
			return err
		}
		return nil
	}
	return errors.Errorf("unknown format %q", format)
}

func readEnvelope(r io.Reader, format string) (requests.SignedRequest, error) {
	var env requests.SignedRequest
	var err error
	switch format {
	case "json":
		err = json.NewDecoder(r).Decode(&env)
	case "yaml":
		err = yaml.NewDecoder(r).Decode(&env)
	case "cbor":
		err = cbor.NewDecoder(r).Decode(&env)
	default:
		return env, errors.Errorf("unknown format %q", format)
	}
	return env, errors.Wrapf(err, "reading %s envelope", format)
}

func runDecode(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var inputPath, format, publicKey string
	var verbose bool

	flagSet := pflag.NewFlagSet("hotmarsh decode", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&inputPath, "input", "i", "-", "envelope file, - for standard input")
	flagSet.StringVar(&format, "format", "json", "envelope format: json, yaml or cbor")
	flagSet.StringVar(&publicKey, "public-key", "", "base64 public key to verify the signature with")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	logger := newLogger(stderr, verbose)

	in := stdin
	if inputPath != "-" {
		f, err := os.Open(inputPath)
		if err != nil {
			return errors.Wrap(err, "opening envelope")
		}
		defer f.Close()
		in = f
	}
	env, err := readEnvelope(in, format)
	if err != nil {
		return err
	}
	req, err := env.Decode()
	if err != nil {
		return err
	}
	logger.Debug("decoded request", "file", inputPath, "kind", req.Kind(), "bytes", len(env.Request))

	status := "unsigned"
	if env.Signature != "" {
		status = "not verified"
		if publicKey != "" {
			if err := signer.Verify(publicKey, env.Request, env.Signature); err != nil {
				return err
			}
			status = "verified"
		}
	}
	if err := req.Validate(); err != nil {
		return errors.Wrap(err, "decoded request is invalid")
	}
	_, err = fmt.Fprintf(stdout, "kind: %s\nbytes: %d\nsignature: %s\n", req.Kind(), len(env.Request), status)
	return err
}
