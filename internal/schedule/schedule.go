package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Platform selects which scheduler a Task is rendered for.
type Platform string

const (
	Windows Platform = "windows"
	Cron    Platform = "cron"
)

var (
	timeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

	// schtasks day codes mapped to cron day-of-week numbers.
	days = map[string]int{
		"SUN": 0, "MON": 1, "TUE": 2, "WED": 3, "THU": 4, "FRI": 5, "SAT": 6,
	}
)

// Task is a weekly job that runs Executable on Day at Time.
type Task struct {
	Name       string
	Executable string
	WorkDir    string
	Day        string
	Time       string
}

// PlatformFor maps a GOOS value to the scheduler used on it.
func PlatformFor(goos string) Platform {
	if goos == "windows" {
		return Windows
	}
	return Cron
}

// Validate normalises the task in place and reports missing or malformed fields.
func (t *Task) Validate() error {
	t.Name = strings.TrimSpace(t.Name)
	t.Executable = strings.TrimSpace(t.Executable)
	t.Day = strings.ToUpper(strings.TrimSpace(t.Day))
	t.Time = strings.TrimSpace(t.Time)

	if t.Name == "" {
		return errors.New("task name is required")
	}
	if t.Executable == "" {
		return errors.New("executable path is required")
	}
	if _, ok := days[t.Day]; !ok {
		return fmt.Errorf("invalid day %q (expected one of SUN..SAT)", t.Day)
	}
	if !timeRe.MatchString(t.Time) {
		return fmt.Errorf("invalid time %q (expected HH:MM)", t.Time)
	}
	return nil
}

// SchtasksArgs returns the arguments for `schtasks` that create or replace
// the weekly task with limited privileges. Scheduled tasks start in the
// system directory, so a WorkDir is entered through cmd before the binary runs.
func (t Task) SchtasksArgs() []string {
	action := quote(t.Executable)
	if dir := strings.TrimSpace(t.WorkDir); dir != "" {
		action = fmt.Sprintf(`cmd /c cd /d "%s" && "%s"`, dir, t.Executable)
	}

	return []string{
		"/Create", "/F",
		"/SC", "WEEKLY",
		"/D", t.Day,
		"/ST", t.Time,
		"/TN", t.Name,
		"/TR", action,
		"/RL", "LIMITED",
	}
}

// CronLine renders a validated task as a crontab entry tagged with its name.
func (t Task) CronLine() string {
	m := timeRe.FindStringSubmatch(t.Time)
	hour, minute := strings.TrimLeft(m[1], "0"), strings.TrimLeft(m[2], "0")
	if hour == "" {
		hour = "0"
	}
	if minute == "" {
		minute = "0"
	}

	cmd := quote(t.Executable)
	if dir := strings.TrimSpace(t.WorkDir); dir != "" {
		cmd = "cd " + quote(dir) + " && " + cmd
	}
	return fmt.Sprintf("%s %s * * %d %s # %s", minute, hour, days[t.Day], cmd, t.Name)
}

// MergeCrontab replaces any existing line tagged with the task name and
// appends the new entry.
func (t Task) MergeCrontab(existing string) string {
	tag := "# " + t.Name
	var kept []string
	for _, line := range strings.Split(strings.TrimSuffix(existing, "\n"), "\n") {
		if strings.HasSuffix(strings.TrimSpace(line), tag) {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 1 && kept[0] == "" {
		kept = nil
	}
	kept = append(kept, t.CronLine())
	return strings.Join(kept, "\n") + "\n"
}

// CrontabListing interprets the output of `crontab -l`. A user without a
// crontab gets a failing exit with "no crontab" on stderr, which counts as
// empty; any other failure is returned so the existing table is not replaced.
func CrontabListing(stdout, stderr []byte, err error) (string, error) {
	if err == nil {
		return string(stdout), nil
	}
	if strings.Contains(strings.ToLower(string(stderr)), "no crontab") {
		return "", nil
	}
	return "", fmt.Errorf("read crontab: %w: %s", err, strings.TrimSpace(string(stderr)))
}

func quote(s string) string {
	if strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}
