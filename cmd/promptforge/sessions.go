package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/joss/promptforge/internal/domain"
	"github.com/joss/promptforge/internal/render"
)

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and manage saved prompt sessions",
	}

	cmd.AddCommand(
		sessionsListCmd(),
		sessionsShowCmd(),
		sessionsLoadCmd(),
		sessionsRenameCmd(),
		sessionsDeleteCmd(),
		sessionsDeleteVersionCmd(),
	)
	return cmd
}

func sessionsListCmd() *cobra.Command {
	var match string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest created first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			sessions := a.manager.Sessions()
			if match != "" {
				sessions, err = filterSessions(sessions, match)
				if err != nil {
					return err
				}
			}

			render.Stdout().Print("%s", a.renderer.Sessions(sessions, a.manager.ActiveID()))
			return nil
		},
	}

	cmd.Flags().StringVar(&match, "match", "", "Filter by glob pattern on the session name (e.g. 'landing*')")
	return cmd
}

// filterSessions keeps sessions whose name matches the glob pattern.
func filterSessions(sessions []*domain.Session, pattern string) ([]*domain.Session, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.New("invalid glob pattern: " + pattern)
	}

	var out []*domain.Session
	for _, s := range sessions {
		ok, err := doublestar.Match(pattern, s.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func sessionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session>",
		Short: "Show a session's version history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			s, err := findSession(a.manager, args[0])
			if err != nil {
				return err
			}
			render.Stdout().Print("%s", a.renderer.SessionDetail(s))
			return nil
		},
	}
}

func sessionsLoadCmd() *cobra.Command {
	var versionID string

	cmd := &cobra.Command{
		Use:   "load <session>",
		Short: "Print the version a new iteration would start from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			s, err := findSession(a.manager, args[0])
			if err != nil {
				return err
			}
			v, distance, ok := a.manager.SelectForIteration(s.ID, versionID)
			if !ok {
				return errors.New("session not found: " + args[0])
			}

			w := render.Stdout()
			if count := len(s.Versions); distance < count {
				w.Println("%s", a.renderer.Notification(
					fmt.Sprintf("Loaded v%d (%d behind latest)", distance, count-distance), "info"))
			}
			w.Println("%s", v.OptimizedPrompt)
			return nil
		},
	}

	cmd.Flags().StringVar(&versionID, "version", "", "Load a specific version instead of the latest")
	return cmd
}

func sessionsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <session> <new-name>",
		Short: "Rename a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			s, err := findSession(a.manager, args[0])
			if err != nil {
				return err
			}
			a.manager.Rename(context.Background(), s.ID, args[1])
			render.Stdout().Println("%s", a.renderer.Notification(fmt.Sprintf("Renamed to %q", args[1]), "success"))
			return nil
		},
	}
}

func sessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session>",
		Short: "Delete a session and its whole history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			s, err := findSession(a.manager, args[0])
			if err != nil {
				return err
			}
			a.manager.DeleteSession(context.Background(), s.ID)
			render.Stdout().Println("%s", a.renderer.Notification("Session deleted", "success"))
			return nil
		},
	}
}

func sessionsDeleteVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-version <session> <version-id>",
		Short: "Delete one version; deleting the last removes the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			s, err := findSession(a.manager, args[0])
			if err != nil {
				return err
			}
			if !a.manager.DeleteVersion(context.Background(), s.ID, args[1]) {
				return errors.New("version not found: " + args[1])
			}
			render.Stdout().Println("%s", a.renderer.Notification("Version deleted", "success"))
			return nil
		},
	}
}
