package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vbonduro/moveassist/internal/domain"
	"github.com/vbonduro/moveassist/internal/imaging"
	"github.com/vbonduro/moveassist/internal/store"
)

func newBoxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "box",
		Short: "Inspect and edit stored boxes",
	}
	cmd.AddCommand(newBoxListCmd(a), newBoxShowCmd(a), newBoxAddCmd(a), newBoxDeleteCmd(a))
	return cmd
}

func newBoxListCmd(a *app) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List boxes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(s *store.BoxStore) error {
				boxes, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				boxes = slices.DeleteFunc(boxes, func(b *domain.Box) bool { return !b.Matches(query) })
				return printBoxes(cmd.OutOrStdout(), boxes)
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only show boxes matching this text")
	return cmd
}

func newBoxShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one box",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(s *store.BoxStore) error {
				box, err := s.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if box == nil {
					return fmt.Errorf("box %q not found", args[0])
				}
				printBox(cmd.OutOrStdout(), box)
				return nil
			})
		},
	}
}

func newBoxAddCmd(a *app) *cobra.Command {
	var (
		id, description, room, photoPath string
		tags, items                      []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a box, or update it when --id names an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := store.SaveInput{ID: id, AIGeneratedTags: tags}
			if cmd.Flags().Changed("description") {
				in.ManualDescription = &description
			}
			if cmd.Flags().Changed("room") {
				in.AssignedRoom = &room
			}
			if cmd.Flags().Changed("item") {
				in.Items = make([]domain.Item, 0, len(items))
				for _, name := range items {
					in.Items = append(in.Items, domain.Item{Name: name})
				}
			}
			if photoPath != "" {
				dataURL, err := readPhotoFile(photoPath)
				if err != nil {
					return err
				}
				in.PhotoDataURL = &dataURL
			}

			return a.withStore(cmd.Context(), func(s *store.BoxStore) error {
				res, err := s.Save(cmd.Context(), in)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				color.New(color.FgGreen).Fprintf(out, "Saved box %s\n", res.Box.ID)
				if res.PhotoDropped {
					color.New(color.FgYellow).Fprintln(out, "Storage is full: the box was saved without its photo.")
				}
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&id, "id", "", "Box id (generated when empty)")
	f.StringVarP(&description, "description", "d", "", "Manual description")
	f.StringVarP(&room, "room", "r", "", "Assigned room")
	f.StringVar(&photoPath, "photo", "", "Path to a JPEG, PNG, GIF or WebP photo")
	f.StringSliceVarP(&tags, "tag", "t", nil, "Tag (repeatable)")
	f.StringSliceVar(&items, "item", nil, "Item name (repeatable)")
	return cmd
}

func newBoxDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a box and its photo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(s *store.BoxStore) error {
				if err := s.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Deleted box %s\n", args[0])
				return nil
			})
		},
	}
}

func newRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List the rooms a box can be assigned to",
		Args:  cobra.NoArgs,
		// Needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			for _, r := range domain.Rooms {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
		},
	}
}

// withStore opens the configured store for the duration of fn.
func (a *app) withStore(ctx context.Context, fn func(*store.BoxStore) error) (err error) {
	m, closeMedium, err := newMedium(a.cfg)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, closeMedium()) }()

	s, err := store.Open(ctx, m, a.logger)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, s.Close()) }()

	return fn(s)
}

func readPhotoFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}
	mimeType, ok := imaging.DetectMIME(data)
	if !ok {
		return "", fmt.Errorf("%s: %w", path, imaging.ErrUnsupportedImage)
	}
	return imaging.EncodeDataURL(mimeType, data), nil
}

func printBoxes(out io.Writer, boxes []*domain.Box) error {
	if len(boxes) == 0 {
		color.New(color.Faint).Fprintln(out, "No boxes found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := color.New(color.Bold).SprintFunc()
	fmt.Fprintln(w, header("ID\tROOM\tDESCRIPTION\tTAGS\tCREATED"))
	for _, b := range boxes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			b.ID,
			orDash(b.AssignedRoom),
			orDash(truncate(b.ManualDescription, 40)),
			orDash(strings.Join(b.AIGeneratedTags, ", ")),
			b.CreatedAt.Local().Format(time.DateTime),
		)
	}
	return w.Flush()
}

func printBox(out io.Writer, b *domain.Box) {
	label := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", label("Box:"), b.ID)
	fmt.Fprintf(out, "%s %s\n", label("Created:"), b.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "%s %s\n", label("Room:"), orDash(b.AssignedRoom))
	if b.SuggestedRoom != "" {
		fmt.Fprintf(out, "%s %s\n", label("Suggested room:"), b.SuggestedRoom)
	}
	fmt.Fprintf(out, "%s %s\n", label("Description:"), orDash(b.ManualDescription))
	fmt.Fprintf(out, "%s %s\n", label("Tags:"), orDash(strings.Join(b.AIGeneratedTags, ", ")))
	photo := "no"
	if b.PhotoDataURL != "" {
		photo = "yes"
	}
	fmt.Fprintf(out, "%s %s\n", label("Photo:"), photo)
	for _, it := range b.Items {
		fmt.Fprintf(out, "  - %s", it.Name)
		if it.Quantity != "" {
			fmt.Fprintf(out, " (%s)", it.Quantity)
		}
		fmt.Fprintln(out)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
