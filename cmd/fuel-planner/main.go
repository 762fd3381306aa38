package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"fuel-planner/internal/app"
	"fuel-planner/internal/config"
	"fuel-planner/internal/logger"
	"fuel-planner/internal/render"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zl, err := logger.New(cfg.IsProduction(), "warn")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	ctx := context.Background()
	application, closeApp, err := app.Bootstrap(ctx, cfg, zl)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer closeApp()

	switch os.Args[1] {
	case "import":
		err = runImport(application, os.Args[2:])
	case "plan":
		err = runPlan(ctx, application, os.Args[2:])
	case "usage":
		err = runUsage(ctx, application, os.Args[2:])
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		var affected int64
		affected, err = application.CleanupMetrics(ctx, *days)
		if err == nil {
			fmt.Printf("Successfully removed %d old metric records.\n", affected)
		}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		zl.Debug("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func runImport(a *app.App, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: fuel-planner import <calendar.ics>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	classes, err := a.ImportICS(f)
	if err != nil {
		return err
	}
	return printJSON(classes)
}

// planFile holds the preference sets; the defaults apply to anything left out.
type planFile struct {
	Nutrition *json.RawMessage `json:"nutritionPreferences"`
	Fitness   *json.RawMessage `json:"fitnessPreferences"`
}

func runPlan(ctx context.Context, a *app.App, args []string) error {
	planCmd := flag.NewFlagSet("plan", flag.ExitOnError)
	icsPath := planCmd.String("ics", "", "Class schedule to plan around (required)")
	prefsPath := planCmd.String("prefs", "", "JSON file with nutritionPreferences and fitnessPreferences")
	outPath := planCmd.String("out", "", "Write the plan as an .ics file")
	planCmd.Parse(args)

	if *icsPath == "" {
		planCmd.Usage()
		return errors.New("-ics is required")
	}

	f, err := os.Open(*icsPath)
	if err != nil {
		return err
	}
	classes, err := a.ImportICS(f)
	f.Close()
	if err != nil {
		return err
	}

	d := a.PreferenceDefaults()
	if *prefsPath != "" {
		if err := loadPreferences(*prefsPath, &d); err != nil {
			return err
		}
	}

	fmt.Printf("Generating a plan around %d classes...\n", len(classes))
	res, err := a.GeneratePlan(ctx, app.GenerateInput{Classes: classes, Nutrition: &d.Nutrition, Fitness: &d.Fitness})
	for _, v := range res.Violations {
		fmt.Printf("! %s: %s\n", v.Rule, v.Message)
	}
	if err != nil {
		return err
	}

	week, err := a.Render(app.ViewList, classes, res.Events)
	if err != nil {
		return err
	}
	printWeek(week.Days)

	if *outPath != "" {
		ics, err := a.ExportICS(res.Events)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*outPath, []byte(ics), 0644); err != nil {
			return err
		}
		fmt.Printf("\nSaved %d events to %s\n", len(res.Events), *outPath)
	}
	return nil
}

func loadPreferences(path string, d *app.Defaults) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var pf planFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if pf.Nutrition != nil {
		if err := json.Unmarshal(*pf.Nutrition, &d.Nutrition); err != nil {
			return fmt.Errorf("nutritionPreferences: %w", err)
		}
	}
	if pf.Fitness != nil {
		if err := json.Unmarshal(*pf.Fitness, &d.Fitness); err != nil {
			return fmt.Errorf("fitnessPreferences: %w", err)
		}
	}
	return nil
}

func printWeek(week render.Week) {
	fmt.Println("\n=== WEEKLY SCHEDULE ===")
	for _, day := range week {
		if len(day.Items) == 0 {
			continue
		}
		fmt.Printf("\n%s\n", day.Name)
		for _, it := range day.Items {
			line := fmt.Sprintf("  %8s  %s %s", it.TimeLabel, it.Icon, it.Title)
			if it.Location != "" {
				line += " @ " + it.Location
			}
			fmt.Println(line)
		}
	}
}

func runUsage(ctx context.Context, a *app.App, args []string) error {
	usageCmd := flag.NewFlagSet("usage", flag.ExitOnError)
	days := usageCmd.Int("days", 7, "Report the last N days")
	usageCmd.Parse(args)

	usage, err := a.Usage(ctx, *days)
	if err != nil {
		return err
	}
	if len(usage) == 0 {
		fmt.Println("No data yet")
	}
	for _, d := range usage {
		fmt.Printf("%s: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printUsage() {
	fmt.Println("Usage: fuel-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  import <calendar.ics>                       Print the classes found in a calendar")
	fmt.Println("  plan -ics <file> [-prefs <json>] [-out <ics>] Generate a weekly meal and workout plan")
	fmt.Println("  usage [-days N]                             Show token usage per day")
	fmt.Println("  metrics-cleanup [-days N]                   Remove metric records older than N days")
}
