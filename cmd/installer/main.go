package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Adda-Baaj/khobor-digest/internal/config"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
	"github.com/Adda-Baaj/khobor-digest/internal/schedule"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "installer failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("installer", flag.ContinueOnError)
	dryRun := fs.Bool("dry-run", false, "print the scheduler command instead of running it")
	exe := fs.String("exe", "", "path of the digest binary (defaults to the one next to this installer)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	if *exe == "" {
		if *exe, err = siblingBinary(); err != nil {
			return err
		}
	}
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}

	task := schedule.Task{
		Name:       cfg.ScheduleTaskName,
		Executable: *exe,
		WorkDir:    workDir,
		Day:        cfg.ScheduleDay,
		Time:       cfg.ScheduleTime,
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}

	platform := schedule.PlatformFor(runtime.GOOS)
	log.InfoObj("registering weekly task", "schedule", map[string]any{
		"platform": string(platform),
		"name":     task.Name,
		"day":      task.Day,
		"time":     task.Time,
		"exe":      task.Executable,
		"dry_run":  *dryRun,
	})

	switch platform {
	case schedule.Windows:
		return installSchtasks(task, *dryRun)
	default:
		return installCron(task, *dryRun)
	}
}

func siblingBinary() (string, error) {
	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate installer binary: %w", err)
	}
	name := "digest"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(filepath.Dir(self), name), nil
}

func installSchtasks(task schedule.Task, dryRun bool) error {
	args := task.SchtasksArgs()
	if dryRun {
		fmt.Println("schtasks " + strings.Join(args, " "))
		return nil
	}

	out, err := exec.Command("schtasks", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("schtasks: %w: %s", err, bytes.TrimSpace(out))
	}
	logger.InfoObj("scheduled task registered", "task_name", task.Name)
	return nil
}

func installCron(task schedule.Task, dryRun bool) error {
	if dryRun {
		fmt.Println(task.CronLine())
		return nil
	}

	var stdout, stderr bytes.Buffer
	list := exec.Command("crontab", "-l")
	list.Stdout, list.Stderr = &stdout, &stderr
	runErr := list.Run()
	existing, err := schedule.CrontabListing(stdout.Bytes(), stderr.Bytes(), runErr)
	if err != nil {
		return err
	}

	cmd := exec.Command("crontab", "-")
	cmd.Stdin = strings.NewReader(task.MergeCrontab(existing))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("crontab: %w: %s", err, bytes.TrimSpace(out))
	}
	logger.InfoObj("crontab entry installed", "task_name", task.Name)
	return nil
}
