package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/afero"

	"github.com/jeanpaul/registrar/internal/config"
	"github.com/jeanpaul/registrar/internal/headless"
	"github.com/jeanpaul/registrar/internal/health"
	"github.com/jeanpaul/registrar/internal/sheet"
	"github.com/jeanpaul/registrar/internal/storage"
	"github.com/jeanpaul/registrar/internal/store"
	"github.com/jeanpaul/registrar/internal/tui"
)

func main() {
	dataFlag := flag.String("data", "", "Data file (overrides config data_file)")
	configFlag := flag.String("config", "", "Config file path")
	plainFlag := flag.Bool("plain", false, "Use the numbered console menu instead of the TUI")
	helpFlag := flag.Bool("help", false, "Show help")
	flag.BoolVar(helpFlag, "h", false, "Show help")

	flag.Usage = showHelp
	flag.Parse()

	if *helpFlag {
		showHelp()
		os.Exit(0)
	}

	args := flag.Args()

	// config init runs before loading so a broken config can be replaced.
	if len(args) > 0 && args[0] == "config" {
		cmdConfig(args[1:])
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fatal("config error: %s", err)
	}
	if *dataFlag != "" {
		cfg.DataFile = *dataFlag
	}
	if err := cfg.Validate(); err != nil {
		fatal("config error: %s", err)
	}

	if len(args) > 0 {
		switch args[0] {
		case "doctor":
			cmdDoctor(cfg)
			return
		case "help":
			showHelp()
			return
		}
	}

	st, notices := openStore(cfg)

	if len(args) > 0 {
		switch args[0] {
		case "students":
			fmt.Print(tui.StudentsDashboard(st.Students()))
		case "teachers":
			fmt.Print(tui.TeachersDashboard(st.Teachers()))
		case "report":
			cmdReport(st)
		case "export":
			path := cfg.ExportFile
			if len(args) > 1 {
				path = args[1]
			}
			cmdExport(st, path)
		case "import":
			if len(args) < 2 {
				fatal("usage: registrar import <pattern>...")
			}
			cmdImport(st, args[1:])
		case "snapshot":
			dir := cfg.BackupDir
			if len(args) > 1 {
				dir = args[1]
			}
			cmdSnapshot(st, dir)
		default:
			fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("Unknown command: "+args[0]))
			showHelp()
			os.Exit(2)
		}
		return
	}

	if *plainFlag || !isTerminal() {
		launchHeadless(st, notices)
		return
	}
	launchTUI(st, cfg.DataFile, notices)
}

// openStore loads the data file and prints what happened. A file that cannot
// be read leaves an empty store; the user can still add records.
func openStore(cfg *config.Config) (*store.Store, []string) {
	fs := storage.New(cfg.DataFile, storage.WithAtomicWrite(cfg.Storage.AtomicWrite))
	st := store.New(fs)

	var notices []string
	report, err := st.Load()
	switch {
	case err != nil:
		notices = append(notices, "Could not read "+cfg.DataFile+": "+err.Error())
	case report.Fresh:
		notices = append(notices, "No existing data found. Starting fresh.")
	default:
		notices = append(notices, "Data loaded from file successfully!")
	}
	for _, w := range report.Skipped {
		fmt.Fprintln(os.Stderr, tui.WarningStyle.Render("skipped "+w.Error()))
	}
	if len(report.Skipped) > 0 {
		notices = append(notices, fmt.Sprintf("%d malformed line(s) skipped.", len(report.Skipped)))
	}
	return st, notices
}

func launchHeadless(st *store.Store, notices []string) {
	for _, n := range notices {
		fmt.Println(n)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := headless.Run(ctx, os.Stdin, os.Stdout, st); err != nil && !errors.Is(err, context.Canceled) {
		fatal("%s", err)
	}
}

func launchTUI(st *store.Store, dataPath string, notices []string) {
	m := tui.NewModel(st, dataPath, notices)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fatal("%s", err)
	}
}

func cmdReport(st *store.Store) {
	md := sheet.Report(st.Students(), st.Teachers())
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

func cmdExport(st *store.Store, path string) {
	if err := sheet.Export(path, st.Students(), st.Teachers()); err != nil {
		fatal("export failed: %s", err)
	}
	fmt.Println(tui.BannerStyle.Render(fmt.Sprintf("  Exported %d students and %d teachers to %s",
		len(st.Students()), len(st.Teachers()), path)))
}

func cmdImport(st *store.Store, patterns []string) {
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			fatal("bad pattern %q: %s", pattern, err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		fatal("no workbooks match %v", patterns)
	}

	failed := false
	for _, file := range files {
		fmt.Printf("  %s %s\n", tui.FieldLabelStyle.Render("●"), tui.UserLabelStyle.Render(file))
		rows, err := sheet.Import(file)
		if err != nil {
			fmt.Println(tui.ErrorStyle.Render("    " + err.Error()))
			failed = true
			continue
		}
		for _, p := range rows.Problems {
			fmt.Println(tui.HelpStyle.Render("    skipped " + p.Error()))
		}

		ns, serrs := st.ImportStudents(rows.Students)
		nt, terrs := st.ImportTeachers(rows.Teachers)
		for _, err := range append(serrs, terrs...) {
			var perr *store.PersistError
			if errors.As(err, &perr) {
				fmt.Println(tui.ErrorStyle.Render("    " + err.Error()))
				failed = true
				continue
			}
			fmt.Println(tui.HelpStyle.Render("    rejected " + err.Error()))
		}
		fmt.Println(tui.BannerStyle.Render(fmt.Sprintf("    added %d students, %d teachers", ns, nt)))
	}
	if failed {
		os.Exit(1)
	}
}

func cmdSnapshot(st *store.Store, dir string) {
	path, err := st.Snapshot(dir)
	if err != nil {
		fatal("snapshot failed: %s", err)
	}
	fmt.Println(tui.BannerStyle.Render("  Snapshot written to " + path))
}

func cmdDoctor(cfg *config.Config) {
	fmt.Print(tui.RenderBanner())
	fmt.Println(tui.BannerStyle.Render("  Data File Health Check"))
	fmt.Println()

	fmt.Printf("  %s %s ... ", tui.FieldLabelStyle.Render("●"), tui.UserLabelStyle.Render("config"))
	if src := cfg.Source(); src != "" {
		fmt.Println(tui.BannerStyle.Render("✓ " + src))
	} else {
		fmt.Println(tui.HelpStyle.Render("- Using defaults (run: registrar config init)"))
	}

	fmt.Printf("  %s %s ... ", tui.FieldLabelStyle.Render("●"), tui.UserLabelStyle.Render(cfg.DataFile))
	status := health.Check(afero.NewOsFs(), cfg.DataFile)
	switch {
	case status.Error != "":
		fmt.Println(tui.ErrorStyle.Render("✗ " + status.Error))
	case !status.Exists:
		fmt.Println(tui.HelpStyle.Render("- Not created yet (first save creates it)"))
	default:
		fmt.Printf("%s %s\n",
			tui.BannerStyle.Render(fmt.Sprintf("✓ %d students, %d teachers", status.Students, status.Teachers)),
			tui.HelpStyle.Render(fmt.Sprintf("%d bytes, %s", status.Size, status.Latency.Round(time.Microsecond))),
		)
	}

	for _, w := range status.Warnings {
		fmt.Println(tui.WarningStyle.Render("    " + w))
	}
	if status.Diff != "" {
		fmt.Println()
		fmt.Println(tui.HelpStyle.Render("  The next save will rewrite the file as:"))
		fmt.Println(status.Diff)
	}

	fmt.Println()
	if status.Healthy() {
		fmt.Println(tui.BannerStyle.Render("  Data file healthy!"))
		return
	}
	fmt.Println(tui.ErrorStyle.Render("  Data file has problems."))
	os.Exit(1)
}

func cmdConfig(args []string) {
	if len(args) == 0 || args[0] != "init" {
		fatal("usage: registrar config init [path]")
	}
	path := config.DefaultPath()
	if len(args) > 1 {
		path = args[1]
	}
	if err := config.WriteDefault(path); err != nil {
		fatal("%s", err)
	}
	fmt.Println(tui.BannerStyle.Render("  Wrote " + path))
}

func isTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func fatal(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("error: "+msg))
	os.Exit(1)
}

func showHelp() {
	help := `
` + tui.BannerStyle.Render("Registrar") + ` - student and teacher records in a flat file

` + tui.UserLabelStyle.Render("USAGE:") + `
  registrar [flags]             Start the interactive menu
  registrar <command> [args]    Run a command

` + tui.UserLabelStyle.Render("COMMANDS:") + `
  students                      Print the student dashboard
  teachers                      Print the teacher dashboard
  report                        Render both sections as tables
  export [file.xlsx]            Write both sections to a workbook
  import <pattern>...           Append records from workbooks (** globs allowed)
  snapshot [dir]                Copy the current records to a timestamped file
  doctor                        Check the data file
  config init [path]            Write a default config file
  help                          Show this help

` + tui.UserLabelStyle.Render("FLAGS:") + `
  --data <path>                 Data file (default school_DataBase.txt)
  --config <path>               Config file
  --plain                       Numbered console menu even on a terminal
  --help, -h                    Show this help

` + tui.UserLabelStyle.Render("ENVIRONMENT:") + `
  REGISTRAR_DATA_FILE, REGISTRAR_BACKUP_DIR, REGISTRAR_EXPORT_FILE,
  REGISTRAR_STORAGE_ATOMIC_WRITE override the config file.
`
	fmt.Println(help)
}
