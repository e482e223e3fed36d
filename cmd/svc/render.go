package main

import (
	"fmt"
	"io"
	"slices"

	shared "svc/shared/types"

	"github.com/fatih/color"
)

var changeOrder = map[string]int{"add": 0, "remove": 1, "change": 2}

// printCommit writes a commit as
//
//	<id> [<branch>]: <message>
//	    + added
//	    - removed
//	    / changed [old -> new]
//
//	    Tracked files (n):
//	    [hash] name
func printCommit(w io.Writer, c *shared.Commit) {
	added := color.New(color.FgGreen).SprintFunc()
	removed := color.New(color.FgRed).SprintFunc()
	changed := color.New(color.FgYellow).SprintFunc()
	header := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(w, "%s [%s]: %s\n", header(c.ID), c.Branch, c.Message)

	records := slices.Clone(c.Records)
	slices.SortStableFunc(records, func(a, b shared.Record) int {
		return changeOrder[a.Change] - changeOrder[b.Change]
	})
	for _, r := range records {
		switch r.Change {
		case "add":
			fmt.Fprintf(w, "    %s %s\n", added("+"), r.FileName)
		case "remove":
			fmt.Fprintf(w, "    %s %s\n", removed("-"), r.FileName)
		case "change":
			fmt.Fprintf(w, "    %s %s [%10d -> %10d]\n", changed("/"), r.FileName, deref(r.OldHash), deref(r.NewHash))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "    Tracked files (%d):\n", len(c.Snapshot))
	for _, e := range c.Snapshot {
		fmt.Fprintf(w, "    [%10d] %s\n", e.Hash, e.Name)
	}
}

func deref(h *int64) int64 {
	if h == nil {
		return 0
	}
	return *h
}

func printLog(w io.Writer, commits []shared.Commit) {
	yellow := color.New(color.FgYellow).SprintFunc()
	for _, c := range commits {
		line := fmt.Sprintf("%s %s", yellow(c.ID), c.Message)
		if len(c.Parents) > 1 {
			line += fmt.Sprintf(" (merge %v)", c.Parents)
		}
		fmt.Fprintln(w, line)
	}
}

func printBranches(w io.Writer, b *shared.BranchesResponse) {
	green := color.New(color.FgGreen).SprintFunc()
	for _, name := range b.Branches {
		if name == b.Active {
			fmt.Fprintf(w, "* %s\n", green(name))
			continue
		}
		fmt.Fprintf(w, "  %s\n", name)
	}
}

func printStatus(w io.Writer, st *shared.StatusResponse) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	blue := color.New(color.FgBlue).SprintFunc()

	fmt.Fprintf(w, "On branch %s\n", st.Branch)
	if st.Head != "" {
		fmt.Fprintf(w, "Head %s\n", st.Head)
	}
	if len(st.Files) == 0 {
		fmt.Fprintln(w, "\nNo files tracked")
		return
	}

	fmt.Fprintf(w, "\nFiles:\n\n")
	for _, f := range st.Files {
		var mark string
		switch f.Status {
		case "staged":
			mark = green("A")
		case "modified":
			mark = yellow("M")
		case "missing":
			mark = red("!")
		case "deleted":
			mark = red("D")
		default:
			mark = blue(" ")
		}
		fmt.Fprintf(w, "\t%s %s\n", mark, f.Path)
	}
}
