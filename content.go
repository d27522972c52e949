package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joynet-go/joynet/joynet"
)

func newContentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Manage the content this machine offers to games",
	}

	cmd.AddCommand(
		newContentAddCmd(),
		newContentRmCmd(),
		newContentLsCmd(),
	)

	return cmd
}

func parseList(s string) (int, error) {
	list, err := strconv.Atoi(s)
	if err != nil || list < 0 || list >= joynet.MaxContentLists {
		return 0, fmt.Errorf("content list %q must be a number below %d", s, joynet.MaxContentLists)
	}

	return list, nil
}

func newContentAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <list> <file>...",
		Short: "Hash files and add them to a content list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := parseList(args[0])
			if err != nil {
				return err
			}

			cat, err := openCatalog()
			if err != nil {
				return err
			}
			defer cat.Close()

			for _, path := range args[1:] {
				hash, err := joynet.HashFile(path)
				if err != nil {
					return err
				}

				e := CatalogEntry{List: list, Hash: hash, Name: filepath.Base(path)}
				if err := cat.Add(e); err != nil {
					return err
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d %016x %s\n", e.List, e.Hash, e.Name)
			}

			return nil
		},
	}
}

func newContentRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <list> <hash>",
		Short: "Remove content from a content list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := parseList(args[0])
			if err != nil {
				return err
			}

			hash, err := strconv.ParseUint(args[1], 16, 64)
			if err != nil {
				return fmt.Errorf("hash %q: %w", args[1], err)
			}

			cat, err := openCatalog()
			if err != nil {
				return err
			}
			defer cat.Close()

			return cat.Remove(list, hash)
		},
	}
}

func newContentLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := openCatalog()
			if err != nil {
				return err
			}
			defer cat.Close()

			entries, err := cat.Entries()
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no content")
				return nil
			}

			for _, e := range entries {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d %016x %s\n", e.List, e.Hash, e.Name)
			}

			return nil
		},
	}
}
