package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fakhrymubarak/weather-stripes/internal/config"
	"github.com/fakhrymubarak/weather-stripes/internal/handler"
	"github.com/fakhrymubarak/weather-stripes/internal/middleware"
	"github.com/fakhrymubarak/weather-stripes/internal/model"
	"github.com/fakhrymubarak/weather-stripes/internal/redis"
	"github.com/fakhrymubarak/weather-stripes/internal/service"
	"github.com/fakhrymubarak/weather-stripes/internal/widget"
	"github.com/spf13/pflag"
)

type options struct {
	serve  bool
	city   string
	kind   string
	format string
	out    string
}

func parseFlags(args []string) (*options, error) {
	fs := pflag.NewFlagSet("weather-stripes", pflag.ContinueOnError)
	opts := &options{}
	fs.BoolVar(&opts.serve, "serve", false, "serve widgets over HTTP instead of rendering once")
	fs.StringVarP(&opts.city, "city", "c", config.GetDefaultCity(), "city to render")
	fs.StringVarP(&opts.kind, "kind", "k", string(model.KindTemperature), "widget kind: temperature or cloud")
	fs.StringVarP(&opts.format, "format", "f", "", "output format: svg, png, json or text (default text on stdout, svg otherwise)")
	fs.StringVarP(&opts.out, "out", "o", "", "write the widget to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func main() {
	logger := config.GetLogger()
	defer func() { _ = logger.Sync() }()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		logger.Fatalw("Invalid flags", "error", err)
	}
	if err := widget.LoadTemplates(); err != nil {
		logger.Fatalw("Failed to load widget templates", "error", err)
	}

	if opts.serve {
		if err := serve(); err != nil {
			logger.Fatalw("Server stopped", "error", err)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := renderOnce(ctx, service.NewStripeService(), opts, os.Stdout); err != nil {
		logger.Errorw("Failed to render widget", "city", opts.city, "error", err)
		os.Exit(1)
	}
}

// renderOnce builds one widget and writes it to opts.out or stdout. A
// geocoding failure still writes the error widget before returning the error.
func renderOnce(ctx context.Context, svc service.StripeServiceInterface, opts *options, stdout io.Writer) error {
	kind, ok := model.ParseKind(opts.kind)
	if !ok {
		return fmt.Errorf("unknown kind %q", opts.kind)
	}
	fallback := widget.FormatSVG
	if opts.out == "" {
		fallback = widget.FormatText
	}
	format, ok := widget.ParseFormat(opts.format, fallback)
	if !ok {
		return fmt.Errorf("unknown format %q", opts.format)
	}

	series, fetchErr := svc.GetSeries(ctx, opts.city, kind)
	var wd *widget.Widget
	if fetchErr != nil {
		wd = widget.Error(fetchErr.Error())
	} else {
		wd = widget.Build(series)
	}

	var buf bytes.Buffer
	if err := widget.Encode(&buf, wd, format); err != nil {
		return err
	}
	if opts.out == "" {
		if _, err := stdout.Write(buf.Bytes()); err != nil {
			return err
		}
	} else if err := os.WriteFile(opts.out, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return fetchErr
}

func newMux(h *handler.WidgetHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/widget", middleware.RateLimitMiddleware(http.HandlerFunc(h.HandleWidget)))
	mux.HandleFunc("/healthz", h.HandleHealth)
	return mux
}

func serve() error {
	logger := config.GetLogger()
	if err := redis.Ping(redis.GetContext()); err != nil {
		logger.Warnw("Redis unavailable, serving without cache", "addr", config.GetRedisAddr(), "error", err)
	}

	stop := make(chan struct{})
	defer close(stop)
	middleware.StartRateLimiterCleanup(stop)

	srv := &http.Server{
		Addr:              ":" + config.GetServerPort(),
		Handler:           newMux(handler.NewWidgetHandler()),
		ReadHeaderTimeout: config.GetServerTimeout("read_header_timeout"),
		ReadTimeout:       config.GetServerTimeout("read_timeout"),
		WriteTimeout:      config.GetServerTimeout("write_timeout"),
		IdleTimeout:       config.GetServerTimeout("idle_timeout"),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		logger.Infow("Weather stripes server running", "port", config.GetServerPort())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), config.GetServerTimeout("shutdown_timeout"))
	defer done()
	logger.Infow("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
