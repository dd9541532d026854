package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/evanschultz/float-notetree/pkg/config"
	"github.com/evanschultz/float-notetree/pkg/im"
	"github.com/evanschultz/float-notetree/pkg/notes"
	"github.com/evanschultz/float-notetree/pkg/notesui"
	"github.com/evanschultz/float-notetree/pkg/store"
	"github.com/evanschultz/float-notetree/pkg/tui"
)

var (
	configFile string
	force      bool
)

var rootCmd = &cobra.Command{
	Use:   "float-notetree",
	Short: "A terminal outliner for notes with time tracking",
	Long: `Float Notetree keeps a tree of notes in a local database. Notes carry
inline annotations such as [est:: 2h] and can be timed with start/stop.

Settings are read from config.yaml in the config directory, NOTETREE_*
environment variables and flags.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runNotetree,
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the notes as a markdown outline",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the stored notes with a markdown outline",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is config.yaml in the config directory)")
	rootCmd.PersistentFlags().String("store", "", "path of the notes database")
	rootCmd.Flags().String("log-file", "", "append logs to this file")
	importCmd.Flags().BoolVar(&force, "force", false, "overwrite existing notes")

	rootCmd.AddCommand(exportCmd, importCmd)
}

func loadConfig(cmd *cobra.Command) (*viper.Viper, *config.Config, error) {
	v := config.New(cmd.Flags())
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, nil, err
	}
	return v, cfg, nil
}

func themeOf(c *config.Config) tui.Theme {
	return tui.Theme{
		Accent: lipgloss.Color(c.Theme.Accent),
		Muted:  lipgloss.Color(c.Theme.Muted),
		Error:  lipgloss.Color(c.Theme.Error),
	}
}

func runNotetree(cmd *cobra.Command, args []string) error {
	v, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "notetree")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	debug := tui.NewDebugLog(100)
	logger := log.New(io.MultiWriter(debug, logOut), "", log.LstdFlags)

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	tree, err := notesui.Load(st, time.Now())
	if err != nil {
		return err
	}
	logger.Printf("ok: opened %s with %d notes", st.Path(), tree.Len())

	app := notesui.New(tree, st, notesui.Options{
		SaveDelay: cfg.SaveDebounce,
		Logger:    logger,
		Debug:     debug,
	})
	host := tui.NewHost(func(c *im.Ctx, h *tui.Host) { app.View(c, h) }, tui.Options{
		Logger:        logger,
		Theme:         themeOf(cfg),
		FrameInterval: cfg.FrameInterval,
	})

	p := tea.NewProgram(host, tea.WithAltScreen())
	if v.ConfigFileUsed() != "" {
		config.Watch(v, func(c *config.Config) {
			p.Send(tui.ThemeMsg{Theme: themeOf(c)})
			p.Send(tui.CallMsg(func() {
				app.SetSaveDelay(c.SaveDebounce)
				logger.Printf("ok: reloaded %s", v.ConfigFileUsed())
			}))
		}, func(err error) {
			p.Send(tui.CallMsg(func() { logger.Printf("error: %v", err) }))
		})
	}

	_, runErr := p.Run()
	app.Flush()
	if runErr != nil {
		return fmt.Errorf("run: %w", runErr)
	}
	if err := host.Err(); err != nil {
		return fmt.Errorf("view stopped: %w", err)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	tree, err := notesui.Load(st, time.Now())
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return tree.WriteOutline(cmd.OutOrStdout())
	}
	if err := atomic.WriteFile(args[0], strings.NewReader(tree.Outline())); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d notes to %s\n", tree.Len(), args[0])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	defer f.Close()
	tree, err := notes.ParseOutline(f, time.Now())
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	if !force {
		existing, err := notesui.Load(st, time.Now())
		if err != nil {
			return err
		}
		if existing.Len() > 0 {
			return fmt.Errorf("import: %s already holds %d notes, use --force to replace them", st.Path(), existing.Len())
		}
	}
	if err := notesui.Save(st, tree); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "imported %d notes into %s\n", tree.Len(), st.Path())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
