// Command xhub-sign prints the X-Hub-Signature header value for a payload,
// or with -url delivers the signed payload to a receiver.
//
//	xhub-sign -secret s3cret < payload.json
//	xhub-sign -secret s3cret -algorithm HmacSHA256 -prefix sha256= -file payload.json
//	xhub-sign -secret s3cret -url http://localhost:8080/webhook < payload.json
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"xhub/internal/common/logging"
	"xhub/internal/delivery"
	"xhub/internal/signature"
)

func main() {
	_ = godotenv.Load()

	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "xhub-sign:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("xhub-sign", flag.ContinueOnError)
	secret := fs.String("secret", os.Getenv("XHUB_SECRET"), "shared secret (defaults to $XHUB_SECRET)")
	algorithm := fs.String("algorithm", signature.DefaultAlgorithm, "HMAC algorithm")
	prefix := fs.String("prefix", signature.DefaultSignaturePrefix, "prefix placed before the hex digest")
	file := fs.String("file", "", "read the payload from this file instead of stdin")
	withHeader := fs.Bool("header", false, "print the full header line")
	headerName := fs.String("name", signature.DefaultHeader, "header name used with -header and -url")
	url := fs.String("url", "", "POST the signed payload to this URL")
	attempts := fs.Uint("attempts", 3, "delivery attempts with -url")
	if err := fs.Parse(args); err != nil {
		return err
	}

	input := stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}

	body, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	if *url != "" {
		return deliver(*url, body, &signature.Options{
			Algorithm:       *algorithm,
			SignaturePrefix: *prefix,
			Header:          *headerName,
		}, *secret, *attempts, stdout)
	}

	value, err := signature.Sign(body, *secret, *algorithm, *prefix)
	if err != nil {
		return err
	}

	if *withHeader {
		_, err = fmt.Fprintf(stdout, "%s: %s\n", *headerName, value)
		return err
	}
	_, err = fmt.Fprintln(stdout, value)
	return err
}

func deliver(url string, body []byte, opts *signature.Options, secret string, attempts uint, stdout io.Writer) error {
	config, err := signature.NewConfig(secret, opts)
	if err != nil {
		return err
	}

	sender, err := delivery.NewSender(url, config, &delivery.Options{MaxAttempts: attempts}, logging.GetGlobalLogger())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := sender.Send(ctx, body)
	if result != nil {
		fmt.Fprintf(stdout, "%d %s\n", result.StatusCode, result.DeliveryID)
		if len(result.Body) > 0 {
			fmt.Fprintf(stdout, "%s\n", result.Body)
		}
	}
	return err
}
