package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rgpvpanel/console/internal/app"
	"github.com/rgpvpanel/console/internal/config"
	"github.com/rgpvpanel/console/internal/console"
)

// errReported means the failure was already shown as an error notice.
var errReported = errors.New("operation failed")

var errNotLoggedIn = errors.New("not logged in, run `console login` first")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &cli{out: os.Stdout, errOut: os.Stderr, in: bufio.NewReader(os.Stdin)}
	rootCmd := newRootCommand(c)
	err := rootCmd.ExecuteContext(ctx)
	if c.app != nil {
		c.app.Close()
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "console: %v\n", err)
		}
		os.Exit(1)
	}
}

// cli carries the process state shared by every command. It doubles as the
// console.Notifier, printing notices as they are raised.
type cli struct {
	app    *app.App
	out    io.Writer
	errOut io.Writer
	in     *bufio.Reader
	failed bool
}

func (c *cli) Notify(n console.Notice) {
	if n.Level == console.LevelError {
		c.failed = true
		fmt.Fprintf(c.errOut, "error: %s\n", n.Message)
		return
	}
	fmt.Fprintln(c.out, n.Message)
}

// setup loads configuration unless an app was injected.
func (c *cli) setup() error {
	if c.app != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

// router returns a router resolved from the stored session, failing when no
// administrator is logged in.
func (c *cli) router(ctx context.Context) (*console.Router, error) {
	r := console.NewRouter(c.app.Env(c))
	r.Start(ctx)
	if r.State() != console.Authenticated {
		return nil, errNotLoggedIn
	}
	return r, nil
}

// confirmer asks on stdin unless yes is set.
func (c *cli) confirmer(yes bool) console.Confirmer {
	if yes {
		return console.Always
	}
	return console.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
		line, _ := c.in.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	})
}

// result turns a view error into the command's error, hiding ones that were
// already printed as notices.
func (c *cli) result(err error) error {
	if err == nil {
		return nil
	}
	if c.failed {
		return errReported
	}
	return err
}

func (c *cli) prompt(label string) string {
	fmt.Fprintf(c.out, "%s: ", label)
	line, _ := c.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func newRootCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console",
		Short: "RGPV Panel admin console",
		Long: `console manages the resources, videos, users and notifications served by the
RGPV Panel API. Log in once; the session is kept in a local state file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	cmd.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newStatusCmd(c),
		newResourcesCmd(c),
		newVideosCmd(c),
		newSubjectsCmd(c),
		newBranchesCmd(c),
		newUsersCmd(c),
		newNotifyCmd(c),
		newServeCmd(c),
	)
	return cmd
}
