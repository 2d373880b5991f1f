// Command weft is a CLI for prompt version lifecycle management: history,
// diffing, restore, trash, and permanent deletion.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/weftlabs/weft/core"
	"github.com/weftlabs/weft/diff"
	"github.com/weftlabs/weft/lifecycle"
	"github.com/weftlabs/weft/store"
	"github.com/weftlabs/weft/template"
)

func main() {
	dir := flag.String("dir", ".weft", "Data directory (file backend)")
	remote := flag.String("remote", "", "Base URL of a weft server; when set, the file backend is ignored")
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	var st store.Store
	if *remote != "" {
		st = store.NewRemote(*remote, nil)
	} else {
		backend, err := store.NewFileBackend(*dir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "store:", err)
			os.Exit(1)
		}
		st = store.NewLocal(backend)
	}
	mgr := lifecycle.NewManager(st)

	ctx := context.Background()
	cmd := args[0]
	rest := args[1:]
	switch cmd {
	case "list":
		list(ctx, mgr)
	case "show":
		show(ctx, mgr, rest)
	case "save":
		save(ctx, mgr)
	case "history":
		history(ctx, mgr, rest)
	case "trash":
		trash(ctx, mgr, rest)
	case "new-version":
		newVersion(ctx, mgr, rest)
	case "restore":
		restore(ctx, mgr, rest)
	case "delete":
		deleteCmd(ctx, mgr, rest)
	case "restore-deleted":
		restoreDeleted(ctx, mgr, rest)
	case "purge":
		purge(ctx, mgr, rest)
	case "sweep":
		sweep(ctx, mgr, rest)
	case "diff":
		diffCmd(ctx, mgr, rest)
	case "render":
		render(ctx, mgr, rest)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: weft [ -dir <dir> | -remote <url> ] <command> [args]

Commands:
  list                          List all prompts
  show <id>                     Print a prompt as JSON
  save                          Save a prompt from stdin (JSON)
  history <id>                  List active versions, newest first
  trash <id>                    List soft-deleted versions with days remaining
  new-version <id> [minor|major] [note]  Snapshot current content as a new version
  restore <id> <version-id>     Make a historical version current
  delete <id> <version-id>      Move a version to the trash
  restore-deleted <id> <version-id>  Recover a version from the trash
  purge <id> <version-id>       Permanently delete a version
  sweep <id>                    Purge trash entries past the retention window
  diff <id> <version-id> [baseline-id]  Show line changes against a baseline
  render <id> [version-id] [k=v ...]    Render a version's templates with input

Storage: file-based in -dir (default: .weft), or a weft server via -remote.
`)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func need(args []string, n int, usage string) {
	if len(args) < n {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
}

func list(ctx context.Context, mgr *lifecycle.Manager) {
	prompts, err := mgr.List(ctx, store.Filter{Limit: 500})
	if err != nil {
		fail(err)
	}
	for _, p := range prompts {
		number := "?"
		if cur := p.CurrentVersion(); cur != nil {
			number = cur.VersionNumber
		}
		fmt.Printf("%s\t%s\t%s\n", p.ID, number, p.Title)
	}
}

func show(ctx context.Context, mgr *lifecycle.Manager, args []string) {
	need(args, 1, "show requires <id>")
	p, err := mgr.Get(ctx, args[0])
	if err != nil {
		fail(err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		fail(err)
	}
}

func save(ctx context.Context, mgr *lifecycle.Manager) {
	var p core.Prompt
	if err := json.NewDecoder(os.Stdin).Decode(&p); err != nil {
		fail(fmt.Errorf("decode: %w", err))
	}
	if err := mgr.SavePrompt(ctx, &p); err != nil {
		fail(err)
	}
	fmt.Printf("saved %s\n", p.ID)
}

func history(ctx context.Context, mgr *lifecycle.Manager, args []string) {
	need(args, 1, "history requires <id>")
	p, err := mgr.Get(ctx, args[0])
	if err != nil {
		fail(err)
	}
	versions, err := mgr.History(ctx, args[0])
	if err != nil {
		fail(err)
	}
	for _, v := range versions {
		marker := " "
		if v.ID == p.CurrentVersionID {
			marker = "*"
		}
		fmt.Printf("%s %s\t%s\t%s\t%s\n", marker, v.VersionNumber, v.ID,
			v.CreatedAt.Format(time.RFC3339), v.ChangeNote)
	}
}

func trash(ctx context.Context, mgr *lifecycle.Manager, args []string) {
	need(args, 1, "trash requires <id>")
	versions, err := mgr.Trash(ctx, args[0])
	if err != nil {
		fail(err)
	}
	now := time.Now()
	for _, v := range versions {
		fmt.Printf("%s\t%s\t%d days remaining\n", v.VersionNumber, v.ID,
			lifecycle.DaysRemaining(v, now))
	}
}

func newVersion(ctx context.Context, mgr *lifecycle.Manager, args []string) {
	need(args, 1, "new-version requires <id> [minor|major] [note]")
	bump := core.BumpMinor
	if len(args) >= 2 {
		bump = core.BumpKind(args[1])
		if !bump.Valid() {
			fail(fmt.Errorf("bump must be minor or major, got %q", args[1]))
		}
	}
	note := ""
	if len(args) >= 3 {
		note = args[2]
	}
	p, err := mgr.CreateVersion(ctx, args[0], store.CreateVersionRequest{ChangeNote: note, Bump: bump})
	if err != nil {
		fail(err)
	}
	fmt.Printf("created %s@%s\n", p.ID, p.CurrentVersion().VersionNumber)
}

func restore(ctx context.Context, mgr *lifecycle.Manager, args []string) {
	need(args, 2, "restore requires <id> <version-id>")
	p, err := mgr.RestoreVersion(ctx, args[0], args[1])
	if err != nil {
		fail(err)
	}
	fmt.Printf("restored %s@%s\n", p.ID, p.CurrentVersion().VersionNumber)
}

func deleteCmd(ctx context.Context, mgr *lifecycle.Manager, args []string) {
	need(args, 2, "delete requires <id> <version-id>")
	if _, err := mgr.DeleteVersion(ctx, args[0], args[1]); err != nil {
		fail(err)
	}
	fmt.Printf("moved %s to trash (kept %d days)\n", args[1],
		int(lifecycle.RetentionPeriod.Hours()/24))
}

func restoreDeleted(ctx context.Context, mgr *lifecycle.Manager, args []string) {
	need(args, 2, "restore-deleted requires <id> <version-id>")
	if _, err := mgr.RestoreDeletedVersion(ctx, args[0], args[1]); err != nil {
		fail(err)
	}
	fmt.Printf("recovered %s\n", args[1])
}

func purge(ctx context.Context, mgr *lifecycle.Manager, args []string) {
	need(args, 2, "purge requires <id> <version-id>")
	if _, err := mgr.PermanentDeleteVersion(ctx, args[0], args[1]); err != nil {
		fail(err)
	}
	fmt.Printf("purged %s\n", args[1])
}

func sweep(ctx context.Context, mgr *lifecycle.Manager, args []string) {
	need(args, 1, "sweep requires <id>")
	n, err := mgr.SweepExpired(ctx, args[0], time.Now())
	if err != nil {
		fail(err)
	}
	fmt.Printf("purged %d expired version(s)\n", n)
}

func diffCmd(ctx context.Context, mgr *lifecycle.Manager, args []string) {
	need(args, 2, "diff requires <id> <version-id> [baseline-id]")
	baseline := ""
	if len(args) >= 3 {
		baseline = args[2]
	}
	d, err := mgr.Compare(ctx, args[0], baseline, args[1])
	if err != nil {
		fail(err)
	}
	if d.Baseline != nil {
		fmt.Printf("--- %s\n", d.Baseline.VersionNumber)
	} else {
		fmt.Println("--- (none)")
	}
	fmt.Printf("+++ %s\n", d.Target.VersionNumber)
	printResult("system", d.System)
	printResult("template", d.Template)
	fmt.Printf("%d added, %d removed\n", d.Added(), d.Removed())
}

func render(ctx context.Context, mgr *lifecycle.Manager, args []string) {
	need(args, 1, "render requires <id> [version-id] [k=v ...]")
	p, err := mgr.Get(ctx, args[0])
	if err != nil {
		fail(err)
	}
	vid := p.CurrentVersionID
	rest := args[1:]
	if len(rest) > 0 && !strings.Contains(rest[0], "=") {
		vid = rest[0]
		rest = rest[1:]
	}
	input := template.Input{}
	for _, kv := range rest {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			fail(fmt.Errorf("input must be key=value, got %q", kv))
		}
		input[k] = v
	}
	out, err := template.NewEngine().RenderVersion(ctx, p, vid, input)
	if err != nil {
		fail(err)
	}
	fmt.Printf("system:\n%s\n\nuser:\n%s\n", out.System, out.User)
}

func printResult(field string, r diff.Result) {
	if r.Added == 0 && r.Removed == 0 {
		return
	}
	fmt.Printf("@@ %s @@\n", field)
	for _, line := range r.Lines {
		switch line.Op {
		case diff.OpAdded:
			fmt.Printf("+%s\n", line.Text)
		case diff.OpRemoved:
			fmt.Printf("-%s\n", line.Text)
		default:
			fmt.Printf(" %s\n", line.Text)
		}
	}
}
