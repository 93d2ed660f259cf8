package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mhsn/forumweb/internal/adapters/filestore"
	"github.com/mhsn/forumweb/internal/apiclient"
	domainauth "github.com/mhsn/forumweb/internal/domain/auth"
	"github.com/mhsn/forumweb/internal/http/validation"
	"github.com/mhsn/forumweb/internal/ports"
	"github.com/mhsn/forumweb/internal/service"
)

var errSessionExpired = errors.New("session expired, run `forumctl login`")

// app holds what every subcommand needs once the root flags are parsed.
type app struct {
	profile string
	logger  *slog.Logger
	storage ports.TokenStorage
	api     *apiclient.Client
	in      *bufio.Reader

	// store is the open session, if a command asked for one.
	store *service.SessionStore
	// hadToken records whether a saved token existed before verification.
	hadToken bool
}

func (a *app) init(cmd *cobra.Command, flags rootFlags, logger *slog.Logger) error {
	if strings.TrimSpace(flags.profile) == "" {
		return errors.New("--profile cannot be empty")
	}
	a.profile = flags.profile
	a.logger = logger
	a.storage = filestore.New(flags.dir, "")
	a.in = bufio.NewReader(cmd.InOrStdin())

	api, err := apiclient.New(apiclient.Options{
		BaseURL: flags.api,
		Timeout: flags.timeout,
		Storage: a.storage,
		OnUnauthorized: func(context.Context, string) {
			if a.store != nil {
				a.store.Invalidate()
			}
		},
		Logger:    logger,
		UserAgent: "forumctl",
	})
	if err != nil {
		return err
	}
	a.api = api
	return nil
}

// ctx tags the command context with the profile so the client sends its token.
func (a *app) ctx(cmd *cobra.Command) context.Context {
	return ports.WithScope(cmd.Context(), a.profile)
}

// session opens the saved session and verifies it with the backend.
func (a *app) session(cmd *cobra.Command) (*service.SessionStore, error) {
	store, err := service.NewSessionStore(cmd.Context(), service.SessionStoreOptions{
		Scope:            a.profile,
		API:              a.api,
		Storage:          a.storage,
		Logger:           a.logger,
		BootstrapRetries: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	a.store = store
	a.hadToken = store.Snapshot().Token != ""
	store.Bootstrap(cmd.Context())
	return store, nil
}

// signedIn is session for commands that need a member.
func (a *app) signedIn(cmd *cobra.Command) (*service.SessionStore, error) {
	store, err := a.session(cmd)
	if err != nil {
		return nil, err
	}
	if !store.Snapshot().Authenticated() {
		if a.hadToken {
			return nil, errSessionExpired
		}
		return nil, errors.New("not logged in, run `forumctl login`")
	}
	return store, nil
}

// prompt reads one line, printing label to stderr first unless value is set.
func (a *app) prompt(cmd *cobra.Command, label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), label+": ")
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// explain turns a backend error into something a person can act on.
func explain(op string, err error) error {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return errSessionExpired
	}
	if apiclient.IsTransport(err) {
		return fmt.Errorf("%s: cannot reach the forum: %w", op, err)
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusNotFound:
			return fmt.Errorf("%s: not found", op)
		case http.StatusBadRequest:
			if f := domainauth.ParseFailure(apiErr.Payload); f.Message != "" || len(f.Fields) > 0 {
				return fmt.Errorf("%s: %w", op, &f)
			}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// failed reports a session operation that did not succeed. A store that lost
// its user during the call was signed out by a 401.
func failed(op string, store *service.SessionStore, res domainauth.Result) error {
	if !store.Snapshot().Authenticated() {
		return errSessionExpired
	}
	return fmt.Errorf("%s: %w", op, res.Failure)
}

// invalid lists form errors one per line, sorted by field.
func invalid(fv *validation.FieldValidator) error {
	errs := fv.Errors()
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, f+": "+errs[f])
	}
	return errors.New(strings.Join(lines, "\n"))
}
