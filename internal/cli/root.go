// Package cli implements forumctl, a terminal client for the forum that keeps
// its session in a local token file.
package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhsn/forumweb/config"
	"github.com/mhsn/forumweb/internal/adapters/filestore"
	"github.com/mhsn/forumweb/internal/observability/logging"
)

type rootFlags struct {
	api       string
	profile   string
	dir       string
	timeout   time.Duration
	debug     bool
	logLevel  string
	logFormat string
}

// defaultAPI returns the backend URL, checking FORUM_API first.
func defaultAPI() string {
	if s := os.Getenv("FORUM_API"); s != "" {
		return s
	}
	return "http://localhost:8000/api/v1"
}

func defaultDir() string {
	dir, err := filestore.DefaultDir()
	if err != nil {
		return ".forumctl"
	}
	return dir
}

// NewRootCmd creates the root cobra command for forumctl.
func NewRootCmd() *cobra.Command {
	var flags rootFlags
	a := &app{}

	root := &cobra.Command{
		Use:   "forumctl",
		Short: "forumctl - a terminal client for the peer support forum",
		Long:  "forumctl signs in to the forum, manages your profile, and reads and writes posts.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if flags.debug {
				flags.logLevel = "debug"
			}
			level := config.LoggingConfig{Level: flags.logLevel}.SlogLevel()
			logger := logging.New(cmd.ErrOrStderr(), level, flags.logFormat)
			return a.init(cmd, flags, logger)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.api, "api", defaultAPI(), "Forum API base URL (or FORUM_API env)")
	pf.StringVar(&flags.profile, "profile", "default", "Name of the saved session to use")
	pf.StringVar(&flags.dir, "config-dir", defaultDir(), "Directory holding saved sessions")
	pf.DurationVar(&flags.timeout, "timeout", 15*time.Second, "Per-request timeout")
	pf.BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProfileCmd(a),
		newAccountCmd(a),
		newCategoriesCmd(a),
		newPostsCmd(a),
		newPostCmd(a),
		newNewPostCmd(a),
		newSearchCmd(a),
		newReplyCmd(a),
		newLikeCmd(a),
	)
	return root
}
