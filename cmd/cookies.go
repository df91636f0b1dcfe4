package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/downyt/internal/shared"
	"github.com/urfave/cli/v3"
)

// CookiesShow reports whether cookies are stored, and prints them with --reveal.
func (r *Runner) CookiesShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStores(); err != nil {
		return err
	}

	value, err := r.cookies.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cookies: %w", err)
	}
	if value == "" {
		return shared.ErrNoCookies
	}

	format := "header"
	if shared.IsNetscapeCookies(value) {
		format = "cookies.txt"
	}
	r.writePlain("Cookies: configurados (%d caracteres, %s)\n", len(value), format)
	if cmd.Bool("reveal") {
		r.writePlain("%s\n", value)
	}
	return nil
}

// CookiesSet stores a cookie string. A pasted cURL command is reduced to its cookie header.
func (r *Runner) CookiesSet(ctx context.Context, cmd *cli.Command) error {
	value := strings.TrimSpace(cmd.StringArg("value"))
	if value == "" {
		return fmt.Errorf("%w: cookie value (use 'cookies clear' to remove)", shared.ErrMissingArgument)
	}

	if strings.HasPrefix(value, "curl ") {
		parsed, err := shared.ParseCurlCommand(value)
		if err != nil {
			return err
		}
		value = parsed.Header
	}

	return r.storeCookies(ctx, value)
}

// CookiesImport reads a "Copy as cURL" dump and stores its cookies.
func (r *Runner) CookiesImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("curl-file")
	parsed, err := shared.ParseCurlFile(path)
	if err != nil {
		return err
	}
	r.logger.Info("parsed cURL file", "file", path, "host", parsed.Host)

	value := parsed.Header
	if cmd.Bool("netscape") {
		value = parsed.ToNetscape()
	}
	return r.storeCookies(ctx, value)
}

// CookiesClear removes the stored cookies.
func (r *Runner) CookiesClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStores(); err != nil {
		return err
	}
	if err := r.cookies.Set(ctx, ""); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	r.writePlain("Cookies removidos\n")
	return nil
}

func (r *Runner) storeCookies(ctx context.Context, value string) error {
	if err := r.openStores(); err != nil {
		return err
	}
	if err := r.cookies.Set(ctx, value); err != nil {
		return fmt.Errorf("failed to save cookies: %w", err)
	}
	r.writePlain("Cookies salvos (%d caracteres)\n", len(value))
	return nil
}
