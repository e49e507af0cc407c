package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/halfdome/confwatch/internal/config"
	"github.com/halfdome/confwatch/internal/countdown"
	"github.com/halfdome/confwatch/internal/directory"
	"github.com/halfdome/confwatch/internal/export"
	"github.com/halfdome/confwatch/internal/favorites"
	"github.com/halfdome/confwatch/internal/ioutils"
	"github.com/halfdome/confwatch/internal/model"
	"github.com/halfdome/confwatch/internal/notify"
	"github.com/halfdome/confwatch/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	verb, args := os.Args[1], os.Args[2:]

	var err error
	switch verb {
	case "list":
		err = runList(args)
	case "saved":
		err = runSaved(args)
	case "save":
		err = runSave(args)
	case "unsave":
		err = runUnsave(args)
	case "scan":
		err = runScan(args)
	case "export":
		err = runExport(args)
	case "watch":
		err = runWatch(args)
	case "settings":
		err = runSettings(args)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", verb)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("confwatch - CFP deadline awareness for conference directories")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  confwatch <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  list      Show every conference with its CFP countdown")
	fmt.Println("  saved     Show saved conferences")
	fmt.Println("  save      Save conferences by id")
	fmt.Println("  unsave    Remove conferences from the saved list")
	fmt.Println("  scan      Deliver due reminders for saved conferences")
	fmt.Println("  export    Write conferences to an iCalendar file")
	fmt.Println("  watch     Scan on a schedule until interrupted")
	fmt.Println("  settings  Show or change reminder settings")
	fmt.Println()
	fmt.Println("For the interactive board, use: confwatch-tui")
	fmt.Println()
	fmt.Println("Run 'confwatch <command> -h' for command options.")
}

// app bundles what every command needs once flags are parsed.
type app struct {
	settings   *config.Settings
	configPath string
	verbose    bool
	store      *store.Store
	favorites  *favorites.Manager
}

func newApp(configFlag, dataFlag string, verbose bool) (*app, error) {
	configPath := configFlag
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dataFlag != "" {
		settings.DataPath = dataFlag
	}

	st := store.Open(settings.StoreDir())
	a := &app{
		settings:   settings,
		configPath: configPath,
		verbose:    verbose,
		store:      st,
		favorites:  favorites.NewManager(st),
	}
	if !st.Available() {
		a.printEvent(notify.Event{
			Message: fmt.Sprintf("Storage unavailable at %s, nothing will persist", settings.StoreDir()),
			Level:   notify.LevelWarning,
		})
	}
	return a, nil
}

func (a *app) printEvent(event notify.Event) {
	if event.Level == notify.LevelVerbose && !a.verbose {
		return
	}

	prefix := ""
	switch event.Level {
	case notify.LevelError:
		prefix = "❌ "
	case notify.LevelWarning:
		prefix = "⚠️  "
	case notify.LevelSuccess:
		prefix = "✅ "
	case notify.LevelInfo:
		prefix = "ℹ️  "
	default:
		prefix = "   "
	}

	fmt.Println(prefix + event.Message)
}

func (a *app) loadConferences(ctx context.Context) ([]model.Conference, error) {
	result, err := directory.Load(ctx, a.settings.DataPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", a.settings.DataPath, err)
	}
	for _, warning := range result.Warnings {
		a.printEvent(notify.Event{Message: warning, Level: notify.LevelWarning})
	}
	model.SortByDeadline(result.Conferences)
	return result.Conferences, nil
}

func (a *app) printBoard(confs []model.Conference, compact bool) {
	now := time.Now()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  CONFERENCE\tCFP CLOSES IN\tDEADLINE\tWHERE\tID")
	for _, conf := range confs {
		marker := "  "
		if a.favorites.IsSaved(conf.ID) {
			marker = "★ "
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%s\n",
			marker, conf.Name, deadlineCell(conf, now, compact), deadlineLabel(conf), conf.Place, conf.ID)
	}
	w.Flush()
}

// deadlineCell renders the countdown column for one conference.
func deadlineCell(conf model.Conference, now time.Time, compact bool) string {
	switch {
	case conf.CFP.Invalid:
		return "invalid deadline: " + conf.CFPRaw
	case conf.CFP.TBA:
		return "TBA"
	}
	r := countdown.Until(conf.CFP, now)
	if compact {
		return countdown.FormatCompact(r)
	}
	return countdown.FormatLong(r)
}

func deadlineLabel(conf model.Conference) string {
	if !conf.CFP.Known() {
		return ""
	}
	return conf.CFP.At.Format("2006-01-02 15:04 MST")
}

func printHeader() {
	fmt.Println("📅 confwatch")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	var (
		configFlag  = fs.String("config", "", "Path to config file")
		dataFlag    = fs.String("data", "", "Conference data file or directory (overrides config)")
		compactFlag = fs.Bool("compact", false, "Dense countdown format")
		verboseFlag = fs.Bool("verbose", false, "Show verbose output")
	)
	fs.Parse(args)

	a, err := newApp(*configFlag, *dataFlag, *verboseFlag)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	confs, err := a.loadConferences(ctx)
	if err != nil {
		return err
	}

	printHeader()
	if len(confs) == 0 {
		fmt.Printf("No conferences found in %s\n", a.settings.DataPath)
		return nil
	}
	a.printBoard(confs, *compactFlag || a.settings.CompactCountdowns)
	return nil
}

func runSaved(args []string) error {
	fs := flag.NewFlagSet("saved", flag.ExitOnError)
	var (
		configFlag  = fs.String("config", "", "Path to config file")
		compactFlag = fs.Bool("compact", false, "Dense countdown format")
		verboseFlag = fs.Bool("verbose", false, "Show verbose output")
	)
	fs.Parse(args)

	a, err := newApp(*configFlag, "", *verboseFlag)
	if err != nil {
		return err
	}

	printHeader()
	saved := a.favorites.List()
	if len(saved) == 0 {
		fmt.Println("No saved conferences yet. Run 'confwatch save <id>' to add one.")
		return nil
	}

	confs := make([]model.Conference, len(saved))
	for i, record := range saved {
		confs[i] = record.Conference
	}
	model.SortByDeadline(confs)
	a.printBoard(confs, *compactFlag || a.settings.CompactCountdowns)
	return nil
}

func runSave(args []string) error {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	var (
		configFlag  = fs.String("config", "", "Path to config file")
		dataFlag    = fs.String("data", "", "Conference data file or directory (overrides config)")
		verboseFlag = fs.Bool("verbose", false, "Show verbose output")
	)
	fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("save needs at least one conference id, see 'confwatch list'")
	}

	a, err := newApp(*configFlag, *dataFlag, *verboseFlag)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	confs, err := a.loadConferences(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]model.Conference, len(confs))
	for _, conf := range confs {
		byID[conf.ID] = conf
	}

	missing := 0
	for _, id := range fs.Args() {
		conf, ok := byID[id]
		if !ok {
			a.printEvent(notify.Event{Message: fmt.Sprintf("No conference with id %q", id), Level: notify.LevelError})
			missing++
			continue
		}
		if a.favorites.IsSaved(id) {
			a.printEvent(notify.Event{Message: fmt.Sprintf("%s is already saved", conf.Name), Level: notify.LevelInfo})
			continue
		}
		if err := a.favorites.Add(conf); err != nil {
			a.printEvent(notify.Event{Message: fmt.Sprintf("Could not persist %s: %v", conf.Name, err), Level: notify.LevelWarning})
			continue
		}
		a.printEvent(notify.Event{Message: fmt.Sprintf("Saved %s (%s)", conf.Name, id), Level: notify.LevelSuccess})
	}

	if missing > 0 {
		return fmt.Errorf("%d id(s) not found, see 'confwatch list'", missing)
	}
	return nil
}

func runUnsave(args []string) error {
	fs := flag.NewFlagSet("unsave", flag.ExitOnError)
	var (
		configFlag  = fs.String("config", "", "Path to config file")
		verboseFlag = fs.Bool("verbose", false, "Show verbose output")
	)
	fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("unsave needs at least one conference id, see 'confwatch saved'")
	}

	a, err := newApp(*configFlag, "", *verboseFlag)
	if err != nil {
		return err
	}

	for _, id := range fs.Args() {
		if !a.favorites.IsSaved(id) {
			a.printEvent(notify.Event{Message: fmt.Sprintf("No saved conference with id %q", id), Level: notify.LevelWarning})
			continue
		}
		if err := a.favorites.Remove(id); err != nil {
			a.printEvent(notify.Event{Message: fmt.Sprintf("Could not persist removal of %s: %v", id, err), Level: notify.LevelWarning})
			continue
		}
		a.printEvent(notify.Event{Message: fmt.Sprintf("Removed %s", id), Level: notify.LevelSuccess})
	}
	return nil
}

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	var (
		configFlag  = fs.String("config", "", "Path to config file")
		verboseFlag = fs.Bool("verbose", false, "Show verbose output")
	)
	fs.Parse(args)

	a, err := newApp(*configFlag, "", *verboseFlag)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	printHeader()
	if a.favorites.Count() == 0 {
		a.printEvent(notify.Event{Message: "No saved conferences to check, run 'confwatch save <id>' first", Level: notify.LevelInfo})
		return nil
	}

	notifier := notify.NewDesktopNotifier(a.settings.ToPermission())
	scanner := notify.NewScanner(a.store, a.favorites, notifier, nil, a.printEvent)

	delivered, err := scanner.CheckUpcoming(ctx)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nScan cancelled.")
			os.Exit(130)
		}
		return fmt.Errorf("scan: %w", err)
	}

	fmt.Println()
	fmt.Printf("✨ Done, %d reminder(s) delivered\n", delivered)
	return nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var (
		configFlag  = fs.String("config", "", "Path to config file")
		dataFlag    = fs.String("data", "", "Conference data file or directory (overrides config)")
		outFlag     = fs.String("o", "confwatch.ics", "Output file, or - for stdout")
		eventsFlag  = fs.Bool("events", false, "Include conference dates as all-day events")
		allFlag     = fs.Bool("all", false, "Export the whole directory instead of saved conferences")
		verboseFlag = fs.Bool("verbose", false, "Show verbose output")
	)
	fs.Parse(args)

	a, err := newApp(*configFlag, *dataFlag, *verboseFlag)
	if err != nil {
		return err
	}

	var confs []model.Conference
	if *allFlag {
		ctx, cancel := signalContext()
		defer cancel()

		confs, err = a.loadConferences(ctx)
		if err != nil {
			return err
		}
	} else {
		saved := a.favorites.List()
		if len(saved) == 0 {
			return fmt.Errorf("no saved conferences to export, use -all for the whole directory")
		}
		confs = make([]model.Conference, len(saved))
		for i, record := range saved {
			confs[i] = record.Conference
		}
		model.SortByDeadline(confs)
	}

	writer := export.NewCalendarWriter(*eventsFlag)
	content := writer.CreateCalendar(confs, time.Now())

	if *outFlag == "-" {
		fmt.Print(content)
		return nil
	}
	if err := ioutils.WriteFileAtomic(*outFlag, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", *outFlag, err)
	}

	events := strings.Count(content, "BEGIN:VEVENT")
	a.printEvent(notify.Event{Message: fmt.Sprintf("Wrote %d event(s) to %s", events, *outFlag), Level: notify.LevelSuccess})
	return nil
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	var (
		configFlag   = fs.String("config", "", "Path to config file")
		scheduleFlag = fs.String("schedule", "", "Cron schedule for scans (overrides config)")
		verboseFlag  = fs.Bool("verbose", false, "Show verbose output")
	)
	fs.Parse(args)

	a, err := newApp(*configFlag, "", *verboseFlag)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	printHeader()
	schedule := a.settings.WatchSchedule
	if *scheduleFlag != "" {
		schedule = *scheduleFlag
	}

	notifier := notify.NewDesktopNotifier(a.settings.ToPermission())
	scanner := notify.NewScanner(a.store, a.favorites, notifier, nil, a.printEvent)
	watcher := notify.NewWatcher(scanner, a.printEvent)

	if err := watcher.Run(ctx, schedule); err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

func runSettings(args []string) error {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	var (
		configFlag  = fs.String("config", "", "Path to config file")
		enableFlag  = fs.Bool("enable", false, "Turn reminders on")
		disableFlag = fs.Bool("disable", false, "Turn reminders off")
		daysFlag    = fs.String("days", "", "Reminder thresholds in days, comma-separated")
		permFlag    = fs.Bool("request-permission", false, "Ask for desktop notification permission")
		compactFlag = fs.Bool("compact", false, "Persist the dense countdown format")
		longFlag    = fs.Bool("long", false, "Persist the verbose countdown format")
		verboseFlag = fs.Bool("verbose", false, "Show verbose output")
	)
	fs.Parse(args)

	if *enableFlag && *disableFlag {
		return fmt.Errorf("choose one of -enable or -disable")
	}
	if *compactFlag && *longFlag {
		return fmt.Errorf("choose one of -compact or -long")
	}

	a, err := newApp(*configFlag, "", *verboseFlag)
	if err != nil {
		return err
	}

	changed := false

	if *enableFlag || *disableFlag || *daysFlag != "" {
		ns := notify.LoadSettings(a.store)
		if *enableFlag {
			ns.Enabled = true
		}
		if *disableFlag {
			ns.Enabled = false
		}
		if *daysFlag != "" {
			days, err := notify.ParseDays(*daysFlag)
			if err != nil {
				return err
			}
			ns.Days = days
		}

		saved, err := notify.SaveSettings(a.store, ns)
		if err != nil {
			return fmt.Errorf("saving reminder settings: %w", err)
		}
		a.printEvent(notify.Event{
			Message: fmt.Sprintf("Reminders enabled=%t, thresholds %s days", saved.Enabled, notify.FormatDays(saved.Days)),
			Level:   notify.LevelSuccess,
		})
		changed = true
	}

	if *permFlag {
		notifier := notify.NewDesktopNotifier(a.settings.ToPermission())
		perm, err := notifier.RequestPermission()
		if err != nil {
			a.printEvent(notify.Event{Message: fmt.Sprintf("Desktop notifications unavailable: %v", err), Level: notify.LevelWarning})
		}
		a.settings.SetPermission(perm)
		if err := a.settings.Save(a.configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		if perm == notify.PermissionGranted {
			a.printEvent(notify.Event{Message: "Desktop notifications enabled", Level: notify.LevelSuccess})
		} else {
			a.printEvent(notify.Event{Message: "Desktop notifications off, reminders stay in-app only", Level: notify.LevelWarning})
		}
		changed = true
	}

	if *compactFlag || *longFlag {
		a.settings.CompactCountdowns = *compactFlag
		if err := a.settings.Save(a.configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		style := "long"
		if a.settings.CompactCountdowns {
			style = "compact"
		}
		a.printEvent(notify.Event{Message: fmt.Sprintf("Countdown style set to %s", style), Level: notify.LevelSuccess})
		changed = true
	}

	if !changed {
		a.printSettings()
	}
	return nil
}

func (a *app) printSettings() {
	ns := notify.LoadSettings(a.store)
	style := "long"
	if a.settings.CompactCountdowns {
		style = "compact"
	}
	available := "yes"
	if !a.store.Available() {
		available = "no"
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Reminders enabled\t%t\n", ns.Enabled)
	fmt.Fprintf(w, "Reminder thresholds\t%s days\n", notify.FormatDays(ns.Days))
	fmt.Fprintf(w, "Desktop notifications\t%s\n", a.settings.ToPermission())
	fmt.Fprintf(w, "Countdown style\t%s\n", style)
	fmt.Fprintf(w, "Watch schedule\t%s\n", a.settings.WatchSchedule)
	fmt.Fprintf(w, "Data path\t%s\n", a.settings.DataPath)
	fmt.Fprintf(w, "Profile\t%s\n", a.settings.ProfileDir)
	fmt.Fprintf(w, "Storage available\t%s\n", available)
	w.Flush()
}
