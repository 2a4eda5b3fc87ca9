package sources

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Adda-Baaj/khobor-digest/internal/logger"
	"gopkg.in/yaml.v3"
)

// Package sources reads the community lists polled for each cadence.

var communityNameRe = regexp.MustCompile(`^[A-Za-z0-9_]{1,21}$`)

// Lists holds the communities for both cadence classes, in file order.
type Lists struct {
	Weekly  []string
	Monthly []string
}

type listFile struct {
	Communities []string `json:"communities" yaml:"communities"`
}

// LoadLists reads the weekly and monthly lists. A missing file yields an
// empty list; any other read or parse failure is returned.
func LoadLists(weeklyPath, monthlyPath string, log logger.Logger) (Lists, error) {
	log = logger.Ensure(log)

	weekly, err := loadOptional(weeklyPath, "weekly", log)
	if err != nil {
		return Lists{}, err
	}
	monthly, err := loadOptional(monthlyPath, "monthly", log)
	if err != nil {
		return Lists{}, err
	}
	return Lists{Weekly: weekly, Monthly: monthly}, nil
}

func loadOptional(path, cadence string, log logger.Logger) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	names, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.WarnObj("community list missing; treating as empty", "sources_file", map[string]any{
			"cadence": cadence,
			"path":    path,
		})
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s communities: %w", cadence, err)
	}
	return names, nil
}

// Load reads one community list. Files ending in .yaml, .yml or .json hold a
// `communities` array; anything else is plain text with one name per line,
// where blank lines and `#` comments are ignored. Names are validated and
// deduplicated, keeping the first occurrence.
func Load(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\uFEFF"))

	var names []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		names, err = decodeList(raw, "yaml", yaml.Unmarshal)
	case ".json":
		names, err = decodeList(raw, "json", json.Unmarshal)
	default:
		names, err = parseText(raw)
	}
	if err != nil {
		return nil, err
	}
	return sanitize(names)
}

func decodeList(data []byte, name string, fn func([]byte, any) error) ([]string, error) {
	var lf listFile
	if err := fn(data, &lf); err != nil {
		return nil, fmt.Errorf("decode %s sources: %w", name, err)
	}
	return lf.Communities, nil
}

func parseText(data []byte) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan sources: %w", err)
	}
	return names, nil
}

// sanitize trims the optional r/ prefix, validates names and drops duplicates.
func sanitize(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for i, n := range names {
		n = strings.TrimSpace(n)
		n = strings.TrimPrefix(strings.TrimPrefix(n, "/"), "r/")
		if !communityNameRe.MatchString(n) {
			return nil, fmt.Errorf("communities[%d]: invalid community name %q", i, n)
		}
		key := strings.ToLower(n)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}
