package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/manifest"
	"github.com/dob9601/jointhedots/pkg/style"
)

// TerminalResolver asks the user to resolve merge conflicts by hand and
// waits for Enter until git reports no unmerged paths
type TerminalResolver struct {
	In  io.Reader
	Out io.Writer
	// Markdown renders the instructions with glamour
	Markdown bool
}

// NewTerminalResolver returns a resolver on stdin and stdout, rendering
// markdown when stdout is a terminal
func NewTerminalResolver() *TerminalResolver {
	return &TerminalResolver{
		In:       os.Stdin,
		Out:      os.Stdout,
		Markdown: style.ColorEnabled(os.Stdout),
	}
}

var _ manifest.ConflictResolver = (*TerminalResolver)(nil)

// Resolve blocks until every conflicted path of p is resolved and staged
func (r *TerminalResolver) Resolve(ctx context.Context, p *manifest.ConflictPending) error {
	return r.wait(ctx, p.Dotfile, p.Paths, p.RepoDir, p.Unresolved)
}

func (r *TerminalResolver) wait(ctx context.Context, dotfile string, paths []string, dir string,
	unresolved func(context.Context) ([]string, error)) error {
	fmt.Fprint(r.Out, r.render(instructions(dotfile, paths, dir)))

	lines := bufio.NewScanner(r.In)
	for {
		fmt.Fprint(r.Out, "Press Enter once the conflicts are resolved and staged... ")
		if !lines.Scan() {
			return errors.Newf(errors.ErrMergeConflict, "input closed before the conflicts in %s were resolved", dotfile).
				WithDetail("dotfile", dotfile)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		remaining, err := unresolved(ctx)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			log.Info().Str("dotfile", dotfile).Msg("Conflicts resolved")
			return nil
		}
		fmt.Fprintf(r.Out, "Still unmerged: %s\n", strings.Join(remaining, ", "))
	}
}

func instructions(dotfile string, paths []string, dir string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Merge conflict in %s\n\n", dotfile)
	fmt.Fprintf(&b, "Your local changes to **%s** conflict with the repository in:\n\n", dotfile)
	for _, p := range paths {
		fmt.Fprintf(&b, "- `%s`\n", p)
	}
	fmt.Fprintf(&b, "\n1. Edit the files in `%s` and remove the conflict markers.\n", dir)
	b.WriteString("2. Stage each file with `git add <file>`.\n")
	b.WriteString("3. Come back here and press Enter.\n")
	return b.String()
}

func (r *TerminalResolver) render(markdown string) string {
	if !r.Markdown {
		return markdown + "\n"
	}
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return markdown + "\n"
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown + "\n"
	}
	return out
}
