package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/cloudflare/cloudflare-go"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// cloudflareToken returns the token stored in path, prompting for one and creating the file if it doesn't exist yet.
func cloudflareToken(ctx context.Context, path string, log zerolog.Logger) (string, error) {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info().Str("path", path).Msg("key file does not exist")
		if err := runSetup(ctx, path, log); err != nil {
			return "", fmt.Errorf("setup: %w", err)
		}
	}
	if err := verifyPermissions(path); err != nil {
		return "", err
	}
	key, err := readKey(path)
	if err != nil {
		return "", err
	}
	log.Debug().Msg("successfully read key from key file")
	return key, nil
}

func runSetup(ctx context.Context, path string, log zerolog.Logger) error {
	stdin := int(os.Stdin.Fd())
	if !term.IsTerminal(stdin) {
		return fmt.Errorf("no token in %s and stdin is not a terminal to prompt for one", path)
	}
	fmt.Fprint(os.Stderr, "Cloudflare API token (Zone.DNS edit): ")
	raw, err := term.ReadPassword(stdin)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading token: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if err := checkToken(ctx, token, log); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("saving token")
	return writeKey(path, token)
}

// checkToken asks Cloudflare whether token is live before it is saved.
func checkToken(ctx context.Context, token string, log zerolog.Logger) error {
	api, err := cloudflare.NewWithAPIToken(token)
	if err != nil {
		return fmt.Errorf("creating cloudflare client: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	result, err := api.VerifyAPIToken(ctx)
	if err != nil {
		return fmt.Errorf("verifying token: %w", err)
	}
	if result.Status != "active" {
		return fmt.Errorf("token status is %q, want \"active\"", result.Status)
	}
	log.Info().Str("id", result.ID).Msg("token verified")
	return nil
}

// writeKey creates path with mode 0600 and never replaces an existing file.
func writeKey(path, token string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("creating key file: %w", err)
	}
	if _, err := io.WriteString(f, token+"\n"); err != nil {
		f.Close()
		return fmt.Errorf("writing key file: %w", err)
	}
	return f.Close()
}

// readKey returns the first line of path, trimmed.
func readKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading key file: %w", err)
	}
	line, _, _ := strings.Cut(string(data), "\n")
	if token := strings.TrimSpace(line); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("key file %s is empty", path)
}

// verifyPermissions rejects key files readable by anyone but the owner.
// Read-only 0400 files, as mounted by most secret stores, are accepted.
func verifyPermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("checking key file permissions: %w", err)
	}
	switch mode := info.Mode().Perm(); mode {
	case 0o600, 0o400:
		return nil
	default:
		return fmt.Errorf("key file %s has mode %s; run chmod 600 on it", path, mode)
	}
}
