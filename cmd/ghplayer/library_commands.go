package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ghplayer/internal/api"
	"ghplayer/internal/mediaid"
)

func newBrowseCommand(ctx *commandContext) *cobra.Command {
	var loggedIn string
	var page, pageSize int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "browse [parent-id]",
		Short: "List the children of a library node (defaults to the root)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := mediaid.RootID
			if len(args) == 1 {
				parent = strings.TrimSpace(args[0])
			}
			client, err := ctx.apiClient(loggedIn)
			if err != nil {
				return err
			}
			resp, err := client.Children(cmd.Context(), parent, page, pageSize)
			if err != nil {
				return wrapAPIError(err, ctx.configValue())
			}
			if asJSON {
				return writeJSON(cmd, resp)
			}
			out := cmd.OutOrStdout()
			if len(resp.Items) == 0 {
				fmt.Fprintf(out, "No children under %s\n", parent)
				return nil
			}
			fmt.Fprintln(out, renderNodes(resp.Items))
			return nil
		},
	}

	cmd.Flags().StringVar(&loggedIn, "logged-in", "", "Override the session's logged-in flag (true or false)")
	cmd.Flags().IntVar(&page, "page", 0, "Page index (accepted but not applied by the daemon)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Page size (accepted but not applied by the daemon)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newItemCommand(ctx *commandContext) *cobra.Command {
	var loggedIn string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "item <id>",
		Short: "Show a single library node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient(loggedIn)
			if err != nil {
				return err
			}
			node, err := client.Item(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				switch api.StatusCode(err) {
				case 404:
					return fmt.Errorf("item %s not found", args[0])
				case 400:
					return fmt.Errorf("item %s is not served by the library", args[0])
				}
				return wrapAPIError(err, ctx.configValue())
			}
			if asJSON {
				return writeJSON(cmd, node)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:        %s\n", node.ID)
			fmt.Fprintf(out, "Title:     %s\n", node.Title)
			if node.Subtitle != "" {
				fmt.Fprintf(out, "Subtitle:  %s\n", node.Subtitle)
			}
			if node.Artist != "" {
				fmt.Fprintf(out, "Artist:    %s\n", node.Artist)
			}
			if node.Album != "" {
				fmt.Fprintf(out, "Album:     %s\n", node.Album)
			}
			fmt.Fprintf(out, "Browsable: %s\n", yesNo(node.Browsable))
			fmt.Fprintf(out, "Playable:  %s\n", yesNo(node.Playable))
			if node.ArtworkRef != "" {
				fmt.Fprintf(out, "Artwork:   %s\n", node.ArtworkRef)
			}
			if node.AudioURI != "" {
				fmt.Fprintf(out, "Audio:     %s\n", node.AudioURI)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&loggedIn, "logged-in", "", "Override the session's logged-in flag (true or false)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var loggedIn string
	var index int
	var position int64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "play <id> [id...]",
		Short: "Build the playback queue for a selection",
		Long: "Sends the given ids as the client's own queue with --index marking the\n" +
			"selected entry, and prints the queue the library builds in its place.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient(loggedIn)
			if err != nil {
				return err
			}
			req := api.QueueRequest{StartIndex: index}
			for _, id := range args {
				req.Items = append(req.Items, api.Node{ID: strings.TrimSpace(id), Playable: true})
			}
			if position >= 0 {
				req.StartPositionMs = &position
			}
			resp, err := client.Queue(cmd.Context(), req)
			if err != nil {
				return wrapAPIError(err, ctx.configValue())
			}
			if asJSON {
				return writeJSON(cmd, resp)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderQueue(resp))
			if resp.StartPositionMs == nil {
				fmt.Fprintln(out, "Start position: player default")
			} else {
				fmt.Fprintf(out, "Start position: %s\n", time.Duration(*resp.StartPositionMs)*time.Millisecond)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&loggedIn, "logged-in", "", "Override the session's logged-in flag (true or false)")
	cmd.Flags().IntVar(&index, "index", 0, "Index of the selected id")
	cmd.Flags().Int64Var(&position, "position", -1, "Start position in milliseconds (negative leaves it to the player)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func renderNodes(nodes []api.Node) string {
	rows := make([][]string, 0, len(nodes))
	for _, node := range nodes {
		rows = append(rows, []string{node.ID, node.Title, node.Subtitle, nodeKind(node), yesNo(node.HasArtwork)})
	}
	return renderTable(
		[]string{"ID", "Title", "Subtitle", "Type", "Artwork"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

func renderQueue(resp api.QueueResponse) string {
	rows := make([][]string, 0, len(resp.Items))
	for i, node := range resp.Items {
		marker := ""
		if i == resp.StartIndex {
			marker = "▶"
		}
		rows = append(rows, []string{marker, strconv.Itoa(i), node.ID, node.Title})
	}
	return renderTable(
		[]string{"", "#", "ID", "Title"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
	)
}

func nodeKind(node api.Node) string {
	switch {
	case node.Browsable && node.Playable:
		return "folder+playable"
	case node.Browsable:
		return "folder"
	case node.Playable:
		return "playable"
	default:
		return "-"
	}
}
