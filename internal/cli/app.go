package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"grocerify/internal/auth"
	"grocerify/repository"
)

// ErrBadCredentials is reported for any failed login. It does not say whether
// the username exists.
var ErrBadCredentials = errors.New("invalid username or password")

// ErrUsage marks a malformed command line.
var ErrUsage = errors.New("usage error")

// accessKey is the command annotation holding the required access level.
const accessKey = "access"

const (
	accessMember = "member" // any logged-in account
	accessAdmin  = "admin"  // logged-in admin
)

// App is the command-line front end. It holds the stores and writes results
// to Out; every inventory change is recorded in Log.
type App struct {
	Users repository.AccountStore
	Items repository.InventoryStore
	Log   *logrus.Logger
	Out   io.Writer
	Err   io.Writer

	// Username and Password are used when the --user/--password flags are absent.
	Username string
	Password string

	Now  func() time.Time
	Rand *rand.Rand
}

// Run builds the command tree and executes it. args excludes the program name.
func (a *App) Run(ctx context.Context, args []string) error {
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	root := a.rootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (a *App) rootCommand() *cobra.Command {
	var user, pass string
	root := &cobra.Command{
		Use:           "grocerify",
		Short:         "Grocerify inventory management",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Usage()
			return fmt.Errorf("%w: missing command", ErrUsage)
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := cmd.Annotations[accessKey]
			if level == "" {
				return nil
			}
			if user == "" {
				user = a.Username
			}
			if pass == "" {
				pass = a.Password
			}
			ctx, err := a.authenticate(cmd.Context(), user, pass)
			if err != nil {
				return err
			}
			if level == accessAdmin {
				if _, err := auth.RequireAdmin(ctx, a.Users); err != nil {
					a.Log.WithFields(logrus.Fields{"user": user, "command": cmd.Name()}).Warn("admin command refused")
					return err
				}
			}
			cmd.SetContext(ctx)
			return nil
		},
	}
	root.SetOut(a.Out)
	root.SetErr(a.Err)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})
	root.PersistentFlags().StringVar(&user, "user", "", "username (or GROCERIFY_USER)")
	root.PersistentFlags().StringVar(&pass, "password", "", "password (or GROCERIFY_PASSWORD)")

	root.AddCommand(
		a.registerCommand(),
		a.suggestIDCommand(),
		a.loginCommand(),
		a.listCommand(),
		a.showCommand(),
		a.exportCommand(),
		a.addCommand(),
		a.updateCommand(),
		a.deleteCommand(),
	)
	return root
}

// authenticate verifies credentials, stamps last_login and returns a context
// carrying the principal.
func (a *App) authenticate(ctx context.Context, username, password string) (context.Context, error) {
	if username == "" || password == "" {
		return ctx, fmt.Errorf("%w: --user and --password are required", auth.ErrUnauthenticated)
	}
	u, err := a.Users.VerifyCredentials(ctx, username, password)
	if err != nil {
		return ctx, fmt.Errorf("verify credentials: %w", err)
	}
	if u == nil {
		a.Log.WithField("user", username).Warn("login failed")
		return ctx, ErrBadCredentials
	}
	if err := a.Users.RecordLogin(ctx, u.Username); err != nil {
		return ctx, fmt.Errorf("record login: %w", err)
	}
	a.Log.WithFields(logrus.Fields{"user": u.Username, "role": u.Role}).Info("logged in")
	return auth.WithPrincipal(ctx, &auth.Principal{Username: u.Username, Role: u.Role}), nil
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// actor names the logged-in user for audit entries.
func actor(ctx context.Context) logrus.Fields {
	p, ok := auth.FromContext(ctx)
	if !ok {
		return logrus.Fields{}
	}
	return logrus.Fields{"user": p.Username, "role": string(p.Role)}
}

// noArgs is cobra.NoArgs reporting ErrUsage.
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

func withAccess(level string) map[string]string {
	return map[string]string{accessKey: level}
}
