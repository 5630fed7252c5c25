package jtd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dob9601/jointhedots/internal/version"
	"github.com/dob9601/jointhedots/pkg/commands"
	"github.com/dob9601/jointhedots/pkg/config"
	"github.com/dob9601/jointhedots/pkg/errors"
	"github.com/dob9601/jointhedots/pkg/filesystem"
	"github.com/dob9601/jointhedots/pkg/hooks"
	"github.com/dob9601/jointhedots/pkg/paths"
	"github.com/dob9601/jointhedots/pkg/prompt"
	"github.com/dob9601/jointhedots/pkg/style"
	"github.com/dob9601/jointhedots/pkg/vcs"
)

// repoFlags select and locate the manifest repository
type repoFlags struct {
	source   string
	method   string
	manifest string
	branch   string
	metadata string
}

func (f *repoFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", "", MsgFlagSource)
	cmd.Flags().StringVar(&f.method, "method", "", MsgFlagMethod)
	cmd.Flags().StringVar(&f.manifest, "manifest", "", MsgFlagManifest)
	cmd.Flags().StringVar(&f.branch, "branch", "", MsgFlagBranch)
	cmd.Flags().StringVar(&f.metadata, "metadata", "", MsgFlagMetadata)
}

func (f *repoFlags) overrides() map[string]interface{} {
	return map[string]interface{}{
		"repository.source":   f.source,
		"repository.method":   f.method,
		"repository.manifest": f.manifest,
		"repository.branch":   f.branch,
		"metadata.path":       f.metadata,
	}
}

// loadConfig reads the configuration file (the default location unless
// --config is set) with flag overrides applied
func loadConfig(g *globalFlags, overrides map[string]interface{}) (*config.Config, error) {
	path := g.configPath
	if path == "" {
		p, err := paths.New()
		if err != nil {
			return nil, err
		}
		path = p.ConfigFilePath()
	}
	return config.Load(paths.ExpandHome(path), overrides)
}

// session assembles the collaborators of one command run. Credentials are
// created here so nothing is cached beyond this invocation.
func session(g *globalFlags, f *repoFlags, repository string, printer *style.Printer, term *prompt.Terminal) (commands.SessionOptions, error) {
	cfg, err := loadConfig(g, f.overrides())
	if err != nil {
		return commands.SessionOptions{}, err
	}
	return commands.SessionOptions{
		Repository:  repository,
		Config:      cfg,
		FS:          filesystem.NewOS(),
		Credentials: vcs.NewInteractiveCredentials(term),
		Hooks:       hooks.NewShellRunner(printer),
	}, nil
}

func newInstallCmd(g *globalFlags) *cobra.Command {
	var (
		rf        repoFlags
		all       bool
		force     bool
		trust     bool
		skipHooks bool
	)

	cmd := &cobra.Command{
		Use:     "install <repository> [dotfiles...]",
		Short:   MsgInstallShort,
		Long:    MsgInstallLong,
		Example: MsgInstallExample,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := style.NewPrinter()
			term := prompt.NewTerminal()
			opts, err := session(g, &rf, args[0], printer, term)
			if err != nil {
				return err
			}

			report, err := commands.InstallDotfiles(cmd.Context(), commands.InstallDotfilesOptions{
				SessionOptions: opts,
				Dotfiles:       args[1:],
				All:            all,
				Force:          force,
				Trust:          trust,
				SkipHooks:      skipHooks,
				Prompter:       term,
				Reporter:       printer,
			})
			if err != nil {
				return err
			}
			printer.Success(MsgInstallSummary, len(report.Installed), len(report.Skipped))
			return nil
		},
	}

	rf.register(cmd)
	cmd.Flags().BoolVarP(&all, "all", "a", false, MsgFlagAll)
	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagForce)
	cmd.Flags().BoolVar(&trust, "trust", false, MsgFlagTrust)
	cmd.Flags().BoolVar(&skipHooks, "skip-hooks", false, MsgFlagSkipHooks)
	cmd.MarkFlagsMutuallyExclusive("trust", "skip-hooks")

	return cmd
}

func newSyncCmd(g *globalFlags) *cobra.Command {
	var (
		rf      repoFlags
		all     bool
		message string
		naive   bool
	)

	cmd := &cobra.Command{
		Use:     "sync <repository> [dotfiles...]",
		Short:   MsgSyncShort,
		Long:    MsgSyncLong,
		Example: MsgSyncExample,
		GroupID: "core",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := style.NewPrinter()
			term := prompt.NewTerminal()
			opts, err := session(g, &rf, args[0], printer, term)
			if err != nil {
				return err
			}

			report, err := commands.SyncDotfiles(cmd.Context(), commands.SyncDotfilesOptions{
				SessionOptions: opts,
				Dotfiles:       args[1:],
				All:            all,
				Message:        message,
				Naive:          naive,
				Prompter:       term,
				Resolver:       prompt.NewTerminalResolver(),
				Reporter:       printer,
			})
			if err != nil {
				return err
			}
			if len(report.Commits) == 0 {
				printer.Info(MsgNothingToSync)
				return nil
			}
			printer.Success(MsgSyncSummary, len(report.Synced), len(report.Commits))
			return nil
		},
	}

	rf.register(cmd)
	cmd.Flags().BoolVarP(&all, "all", "a", false, MsgFlagAll)
	cmd.Flags().StringVarP(&message, "message", "m", "", MsgFlagMessage)
	cmd.Flags().BoolVar(&naive, "naive", false, MsgFlagNaive)

	return cmd
}

func newDiffCmd(g *globalFlags) *cobra.Command {
	var rf repoFlags

	cmd := &cobra.Command{
		Use:     "diff <repository> <dotfile>",
		Short:   MsgDiffShort,
		Long:    MsgDiffLong,
		GroupID: "core",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := style.NewPrinter()
			opts, err := session(g, &rf, args[0], printer, prompt.NewTerminal())
			if err != nil {
				return err
			}

			lines, err := commands.DiffDotfile(cmd.Context(), commands.DiffDotfileOptions{
				SessionOptions: opts,
				Dotfile:        args[1],
			})
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				printer.Info(MsgNoDifferences, args[1])
				return nil
			}
			printer.Diff(lines)
			return nil
		},
	}

	rf.register(cmd)
	return cmd
}

func newInteractiveCmd(g *globalFlags) *cobra.Command {
	var rf repoFlags

	cmd := &cobra.Command{
		Use:     "interactive",
		Short:   MsgInteractiveShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := style.NewPrinter()
			term := prompt.NewTerminal()
			// The repository is asked for by the wizard
			opts, err := session(g, &rf, "", printer, term)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), style.Render(MsgWizardWelcome))
			report, err := commands.RunWizard(cmd.Context(), commands.RunWizardOptions{
				SessionOptions: opts,
				Wizard:         term,
				Reporter:       printer,
			})
			if err != nil {
				return err
			}
			printer.Success(MsgInstallSummary, len(report.Installed), len(report.Skipped))
			return nil
		},
	}

	rf.register(cmd)
	return cmd
}

func newConfigCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: MsgConfigShowShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g, nil)
			if err != nil {
				return err
			}
			content, err := config.Render(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		},
	})

	var overwrite bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: MsgConfigInitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.configPath
			if path == "" {
				p, err := paths.New()
				if err != nil {
					return err
				}
				path = p.ConfigFilePath()
			}
			path = paths.ExpandHome(path)

			fs := filesystem.NewOS()
			exists, err := filesystem.Exists(fs, path)
			if err != nil {
				return err
			}
			if exists && !overwrite {
				return errors.Newf(errors.ErrInvalidInput, MsgConfigExists, path)
			}

			content, err := config.GenerateConfigContent()
			if err != nil {
				return err
			}
			if err := filesystem.WriteFileAtomic(fs, path, []byte(content), 0644); err != nil {
				return errors.Wrapf(err, errors.ErrConfigLoad, "could not write %s", path)
			}
			printer := style.NewPrinter()
			printer.Out = cmd.OutOrStdout()
			printer.Success(MsgConfigWritten, path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&overwrite, "force", "f", false, MsgFlagConfigInit)
	cmd.AddCommand(initCmd)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

