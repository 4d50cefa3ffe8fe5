package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"yatube/domain"
	"yatube/store"

	"github.com/spf13/pflag"
)

// runGroup handles "group create" and "group list".
func runGroup(ctx context.Context, st *store.Store, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("group: expected create or list")
	}
	switch args[0] {
	case "create":
		return createGroup(ctx, st, args[1:], out)
	case "list":
		return listGroups(ctx, st, out)
	}
	return fmt.Errorf("group: unknown subcommand %q", args[0])
}

func createGroup(ctx context.Context, st *store.Store, args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("group create", pflag.ContinueOnError)
	flags.SetOutput(out)
	slug := flags.String("slug", "", "unique URL slug")
	title := flags.String("title", "", "display title")
	description := flags.String("description", "", "group description")
	if err := flags.Parse(args); err != nil {
		return err
	}

	g := domain.Group{
		Slug:        strings.TrimSpace(*slug),
		Title:       strings.TrimSpace(*title),
		Description: strings.TrimSpace(*description),
	}
	if g.Slug == "" || g.Title == "" {
		return errors.New("group create: --slug and --title are required")
	}
	created, err := st.CreateGroup(ctx, g)
	if errors.Is(err, store.ErrConflict) {
		return fmt.Errorf("group create: slug %q is taken", g.Slug)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created group %s (%s)\n", created.Slug, created.ID)
	return nil
}

func listGroups(ctx context.Context, st *store.Store, out io.Writer) error {
	groups, err := st.ListGroups(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tTITLE\tID")
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%s\t%s\n", g.Slug, g.Title, g.ID)
	}
	return w.Flush()
}
