package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	apimock "github.com/kdv2001/apiMock/internal/clients/apimock/http"
	"github.com/kdv2001/apiMock/internal/domain"
	"github.com/kdv2001/apiMock/internal/pkg/logger"
)

var buildVersion string
var buildDate string
var buildCommit string

const na = "N/A"

func main() {
	fmt.Fprintf(os.Stderr, "Build version: %s\n", opIf(buildVersion != "", buildVersion, na))
	fmt.Fprintf(os.Stderr, "Build date: %s\n", opIf(buildDate != "", buildDate, na))
	fmt.Fprintf(os.Stderr, "Build commit: %s\n", opIf(buildCommit != "", buildCommit, na))

	zapLog, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	ctx := logger.ToContext(context.Background(), zapLog.Sugar())

	parsedFlags, err := initFlags()
	if err != nil {
		log.Fatal(err)
	}

	if err = fetch(ctx, parsedFlags, os.Stdout); err != nil {
		log.Fatalf("request failed: %v", err)
	}
}

func fetch(ctx context.Context, parsedFlags flags, out io.Writer) error {
	httpClient := &http.Client{
		Timeout: time.Second * 5,
	}

	opts := []apimock.Option{
		apimock.WithModuleConfig(domain.ModuleConfig{
			Disabled:     parsedFlags.disable,
			StripQueries: parsedFlags.stripQueries,
		}),
	}
	if parsedFlags.page != "" {
		opts = append(opts, apimock.WithLocation(apimock.NewLocation(parsedFlags.page)))
	}

	req := &apimock.Request{
		Method: parsedFlags.method,
		URL:    parsedFlags.serverAddr.String() + parsedFlags.path,
		Params: parsedFlags.params,
	}
	if parsedFlags.mock != "" {
		cmd := domain.ParseCommand(parsedFlags.mock)
		req.Mock = &cmd
	}

	resp, err := apimock.NewClient(httpClient, opts...).Do(ctx, req)
	var statusErr *apimock.StatusError
	if errors.As(err, &statusErr) {
		fmt.Fprintf(out, "%d\n%s\n", statusErr.StatusCode, statusErr.Body)
		return err
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	fmt.Fprintf(out, "%d\n", resp.StatusCode)
	if _, err = io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	fmt.Fprintln(out)

	return nil
}

func opIf[T comparable](cond bool, a T, b T) T {
	if cond {
		return a
	}

	return b
}
