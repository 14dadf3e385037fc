package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ghplayer/internal/api"
	"ghplayer/internal/fileutil"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, session, and artwork cache status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient("")
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				return wrapAPIError(err, ctx.configValue())
			}
			if asJSON {
				return writeJSON(cmd, status)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon:      %s (pid %d)\n", runningLabel(status.Running), status.PID)
			if started, err := time.Parse(time.RFC3339, status.StartedAt); err == nil {
				fmt.Fprintf(out, "Started:     %s\n", humanize.Time(started))
			}
			if status.BackendURL != "" {
				fmt.Fprintf(out, "Backend:     %s\n", status.BackendURL)
			}
			fmt.Fprintf(out, "Logged in:   %s (via %s)\n", yesNo(status.Auth.LoggedIn), status.Auth.Source)
			fmt.Fprintf(out, "Playlist:    %s\n", yesNo(status.Session.HasPlaylist))
			if np := status.Session.NowPlaying; np != nil {
				fmt.Fprintf(out, "Now playing: %s at %s\n", np.Title, time.Duration(status.Session.PositionMs)*time.Millisecond)
			}
			worker := "idle"
			if status.Worker.Active != "" {
				worker = "running " + status.Worker.Active
			}
			if !status.Worker.Running {
				worker = "stopped"
			}
			fmt.Fprintf(out, "Worker:      %s, %d queued\n", worker, status.Worker.Depth)
			fmt.Fprintln(out, renderTable(
				[]string{"Artwork cache", "Value"},
				[][]string{
					{"Entries", humanize.Comma(int64(status.Artwork.Entries))},
					{"Size", fmt.Sprintf("%s / %s", humanize.IBytes(uint64(status.Artwork.Bytes)), humanize.IBytes(uint64(status.Artwork.Budget)))},
					{"Hits", humanize.Comma(int64(status.Artwork.Hits))},
					{"Misses", humanize.Comma(int64(status.Artwork.Misses))},
					{"Evictions", humanize.Comma(int64(status.Artwork.Evictions))},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newArtworkCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "artwork <ref>",
		Short: "Fetch cached artwork for a ref shown by browse or item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient("")
			if err != nil {
				return err
			}
			data, contentType, err := client.Artwork(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				if api.StatusCode(err) == 404 {
					return errors.New("artwork not cached; browse the node that shows it first")
				}
				return wrapAPIError(err, ctx.configValue())
			}
			out := cmd.OutOrStdout()
			if outputPath != "" {
				if err := fileutil.WriteAtomic(outputPath, data, 0o644); err != nil {
					return fmt.Errorf("write artwork: %w", err)
				}
				fmt.Fprintf(out, "Wrote %s (%s) to %s\n", humanize.IBytes(uint64(len(data))), contentType, outputPath)
				return nil
			}
			fmt.Fprintf(out, "%s, %s\n", contentType, humanize.IBytes(uint64(len(data))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the image bytes to this file")
	return cmd
}

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print session events (root changes, playlist state, now playing)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient("")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var since uint64
			printed := false
			for {
				resp, err := client.Events(cmd.Context(), since, follow)
				if err != nil {
					if cmd.Context().Err() != nil {
						return nil
					}
					return wrapAPIError(err, ctx.configValue())
				}
				for _, evt := range resp.Events {
					fmt.Fprintln(out, formatEvent(evt))
					printed = true
				}
				since = resp.Next
				if !follow {
					if !printed {
						fmt.Fprintln(out, "No session events")
					}
					return nil
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep waiting for new events")
	return cmd
}

func formatEvent(evt api.Event) string {
	ts := evt.Timestamp
	if parsed, err := time.Parse(time.RFC3339Nano, evt.Timestamp); err == nil {
		ts = parsed.Local().Format(time.DateTime)
	}
	parts := []string{ts, fmt.Sprintf("#%d", evt.Sequence), evt.Type}
	if evt.LoggedIn != nil {
		parts = append(parts, "logged_in="+yesNo(*evt.LoggedIn))
	}
	if evt.HasPlaylist != nil {
		parts = append(parts, "playlist="+yesNo(*evt.HasPlaylist))
	}
	if evt.MediaID != "" {
		parts = append(parts, evt.MediaID)
	}
	return strings.Join(parts, " ")
}

func runningLabel(running bool) string {
	if running {
		return "running"
	}
	return "stopped"
}
