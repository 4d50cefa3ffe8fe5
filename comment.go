package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"yatube/store"
)

// runComment handles "comment list <post-id>" and "comment hide|show <id>".
func runComment(ctx context.Context, st *store.Store, args []string, out io.Writer) error {
	if len(args) != 2 {
		return errors.New("comment: expected list <post-id>, hide <id> or show <id>")
	}
	switch args[0] {
	case "list":
		return listComments(ctx, st, args[1], out)
	case "hide", "show":
		active := args[0] == "show"
		err := st.SetCommentActive(ctx, args[1], active)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("comment %s: no such comment", args[1])
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "comment %s: active=%t\n", args[1], active)
		return nil
	}
	return fmt.Errorf("comment: unknown subcommand %q", args[0])
}

func listComments(ctx context.Context, st *store.Store, postID string, out io.Writer) error {
	n, err := st.CountComments(ctx, postID)
	if err != nil {
		return err
	}
	comments, err := st.ListComments(ctx, postID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d visible comments\n", n)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTHOR\tTEXT")
	for _, c := range comments {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Author.Username, c.Text)
	}
	return w.Flush()
}
